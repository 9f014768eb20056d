package main

import (
	"github.com/KiranSurya-SU/alumniconnect/internal/auth"
	"github.com/KiranSurya-SU/alumniconnect/internal/config"
	"github.com/KiranSurya-SU/alumniconnect/internal/db"
	clog "github.com/KiranSurya-SU/alumniconnect/internal/log"
	"github.com/KiranSurya-SU/alumniconnect/internal/server"
	"github.com/KiranSurya-SU/alumniconnect/internal/service"
	"github.com/KiranSurya-SU/alumniconnect/internal/ws"

	"github.com/rs/zerolog/log"
)

func main() {
	// main 函数负责加载配置、初始化日志、连接数据库并启动 Gin 服务。
	cfg := config.Load()
	clog.Init(cfg.Env)
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validate")
	}

	gdb, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	userSvc := service.NewUserService(gdb, cfg)
	msgSvc := service.NewMessageService(gdb)
	mentoringSvc := service.NewMentoringService(gdb)
	jobSvc := service.NewJobService(gdb)
	eventSvc := service.NewEventService(gdb)
	forumSvc := service.NewForumService(gdb)

	verifier := auth.NewTokenVerifier(gdb, cfg.JWTSecret)
	manager := ws.NewManager(verifier, msgSvc)

	h := server.NewHandler(userSvc, msgSvc, mentoringSvc, jobSvc, eventSvc, forumSvc)
	r := server.SetupRouter(cfg, gdb, manager, h)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
