package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/registrar/apps/api/echo"
	"github.com/trezcool/registrar/core"
	"github.com/trezcool/registrar/core/admin"
	"github.com/trezcool/registrar/core/student"
	"github.com/trezcool/registrar/core/teacher"
	"github.com/trezcool/registrar/core/user"
	logsvc "github.com/trezcool/registrar/services/logger"
	"github.com/trezcool/registrar/storage/database"
	sqlxrepos "github.com/trezcool/registrar/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := newLogger("API : ", conf)
	dbLogger := newLogger("DB : ", conf)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()
	repoDB := sqlxrepos.NewDB(db, conf.Database.TxTimeout)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up services
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(repoDB), dbLogger)
	adminSvc := admin.NewService(sqlxrepos.NewAdminRepository(repoDB), usrSvc, validate, dbLogger)
	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(repoDB), dbLogger)
	teacherSvc := teacher.NewService(sqlxrepos.NewTeacherRepository(repoDB), dbLogger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			AdminSvc:   adminSvc,
			StudentSvc: studentSvc,
			TeacherSvc: teacherSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newLogger(prefix string, conf *core.Config) core.Logger {
	std := log.New(os.Stdout, prefix, log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if conf.Debug {
		return logsvc.NewConsoleLogger(std)
	}
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(true)
	return logger
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
