package service

import (
	"testing"
	"time"

	"github.com/KiranSurya-SU/alumniconnect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMentoringService_Schedule(t *testing.T) {
	gdb := testDB(t)
	svc := NewMentoringService(gdb)
	mentor := seedUser(t, gdb, models.RoleAlumni, "Bob", "Brown")
	student := seedUser(t, gdb, models.RoleStudent, "Alice", "Adams")

	session, err := svc.Schedule(ScheduleInput{
		MentorID:  mentor.ID,
		StudentID: student.ID,
		Date:      time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Time:      "14:00",
		Topic:     "Career advice",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionScheduled, session.Status)
	assert.Equal(t, 60, session.Duration) // 未指定时长时默认一小时
	assert.Equal(t, "Bob Brown", session.MentorName)
	assert.Equal(t, "Alice Adams", session.StudentName)
	assert.Equal(t, RoomKey(session.ID), session.RoomKey)
}

func TestMentoringService_ScheduleUnknownStudent(t *testing.T) {
	gdb := testDB(t)
	svc := NewMentoringService(gdb)
	mentor := seedUser(t, gdb, models.RoleAlumni, "Bob", "Brown")

	_, err := svc.Schedule(ScheduleInput{MentorID: mentor.ID, StudentID: 999, Date: time.Now(), Time: "14:00", Topic: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMentoringService_ListForUser(t *testing.T) {
	gdb := testDB(t)
	svc := NewMentoringService(gdb)
	mentor := seedUser(t, gdb, models.RoleAlumni, "Bob", "Brown")
	alice := seedUser(t, gdb, models.RoleStudent, "Alice", "Adams")
	carol := seedUser(t, gdb, models.RoleStudent, "Carol", "Clark")

	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	_, err := svc.Schedule(ScheduleInput{MentorID: mentor.ID, StudentID: alice.ID, Date: date, Time: "14:00", Topic: "resume"})
	require.NoError(t, err)
	_, err = svc.Schedule(ScheduleInput{MentorID: mentor.ID, StudentID: carol.ID, Date: date, Time: "15:00", Topic: "interview"})
	require.NoError(t, err)

	// 校友看到自己带的全部会话。
	mentorSessions, err := svc.ListForUser(mentor)
	require.NoError(t, err)
	assert.Len(t, mentorSessions, 2)

	// 学生只看到自己约的。
	aliceSessions, err := svc.ListForUser(alice)
	require.NoError(t, err)
	require.Len(t, aliceSessions, 1)
	assert.Equal(t, "resume", aliceSessions[0].Topic)
}

func TestMentoringService_UpdateStatus(t *testing.T) {
	gdb := testDB(t)
	svc := NewMentoringService(gdb)
	mentor := seedUser(t, gdb, models.RoleAlumni, "Bob", "Brown")
	student := seedUser(t, gdb, models.RoleStudent, "Alice", "Adams")
	outsider := seedUser(t, gdb, models.RoleStudent, "Carol", "Clark")

	session, err := svc.Schedule(ScheduleInput{MentorID: mentor.ID, StudentID: student.ID, Date: time.Now(), Time: "14:00", Topic: "x"})
	require.NoError(t, err)

	// 局外人不能改状态。
	err = svc.UpdateStatus(session.ID, outsider.ID, models.SessionCancelled)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.UpdateStatus(session.ID, student.ID, "bogus")
	assert.Error(t, err)

	require.NoError(t, svc.UpdateStatus(session.ID, student.ID, models.SessionCancelled))
	sessions, err := svc.ListForUser(student)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.SessionCancelled, sessions[0].Status)
}
