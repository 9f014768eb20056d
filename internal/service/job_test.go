package service

import (
	"testing"

	"github.com/KiranSurya-SU/alumniconnect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJob(t *testing.T, svc *JobService, posterID uint, title, company, jobType string) *JobDTO {
	t.Helper()
	job, err := svc.Create(models.Job{
		Title:       title,
		Company:     company,
		Location:    "Bangalore",
		Type:        jobType,
		Description: "desc",
		PostedByID:  posterID,
	})
	require.NoError(t, err)
	return job
}

func TestJobService_ListFilters(t *testing.T) {
	gdb := testDB(t)
	svc := NewJobService(gdb)
	poster := seedUser(t, gdb, models.RoleAlumni, "Bob", "Brown")
	seedJob(t, svc, poster.ID, "Backend Engineer", "Acme Corp", "Full-time")
	seedJob(t, svc, poster.ID, "SRE Intern", "Globex", "Internship")

	all, err := svc.List(JobFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Bob Brown", all[0].PostedByName)

	byType, err := svc.List(JobFilter{Type: "Internship"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "SRE Intern", byType[0].Title)

	// 公司名子串匹配，大小写不敏感。
	byCompany, err := svc.List(JobFilter{Company: "acme"})
	require.NoError(t, err)
	require.Len(t, byCompany, 1)
	assert.Equal(t, "Acme Corp", byCompany[0].Company)
}

func TestJobService_ListSkipsClosed(t *testing.T) {
	gdb := testDB(t)
	svc := NewJobService(gdb)
	poster := seedUser(t, gdb, models.RoleAlumni, "Bob", "Brown")
	job := seedJob(t, svc, poster.ID, "Backend Engineer", "Acme Corp", "Full-time")
	require.NoError(t, gdb.Model(&models.Job{}).Where("id = ?", job.ID).Update("status", models.JobClosed).Error)

	all, err := svc.List(JobFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestJobService_Apply(t *testing.T) {
	gdb := testDB(t)
	svc := NewJobService(gdb)
	poster := seedUser(t, gdb, models.RoleAlumni, "Bob", "Brown")
	student := seedUser(t, gdb, models.RoleStudent, "Alice", "Adams")
	job := seedJob(t, svc, poster.ID, "Backend Engineer", "Acme Corp", "Full-time")

	require.NoError(t, svc.Apply(job.ID, student.ID))

	// 重复申请被拒。
	err := svc.Apply(job.ID, student.ID)
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	got, err := svc.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Applicants)
}

func TestJobService_ApplyClosedJob(t *testing.T) {
	gdb := testDB(t)
	svc := NewJobService(gdb)
	poster := seedUser(t, gdb, models.RoleAlumni, "Bob", "Brown")
	student := seedUser(t, gdb, models.RoleStudent, "Alice", "Adams")
	job := seedJob(t, svc, poster.ID, "Backend Engineer", "Acme Corp", "Full-time")
	require.NoError(t, gdb.Model(&models.Job{}).Where("id = ?", job.ID).Update("status", models.JobClosed).Error)

	err := svc.Apply(job.ID, student.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Apply(999, student.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobService_GetNotFound(t *testing.T) {
	svc := NewJobService(testDB(t))
	_, err := svc.Get(404)
	assert.ErrorIs(t, err, ErrNotFound)
}
