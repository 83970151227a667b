package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/aptcrew/rollbook/apps/api/echo"
	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/attendance"
	"github.com/aptcrew/rollbook/core/finance"
	"github.com/aptcrew/rollbook/core/instrument"
	"github.com/aptcrew/rollbook/core/roster"
	"github.com/aptcrew/rollbook/core/user"
	emailsvc "github.com/aptcrew/rollbook/services/email"
	logsvc "github.com/aptcrew/rollbook/services/logger"
	"github.com/aptcrew/rollbook/storage/database"
	sqlxrepos "github.com/aptcrew/rollbook/storage/database/sqlx"
)

func main() {
	// set up logger
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := setUpDB(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	rosterSvc := roster.NewService(sqlxrepos.NewRosterRepository(db))
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, logger)
	attendanceStore := sqlxrepos.NewAttendanceStore(db)
	attendanceSvc := attendance.NewService(attendanceStore, attendanceStore, rosterSvc, mailSvc, logger)
	instrumentSvc := instrument.NewService(sqlxrepos.NewInstrumentRepository(db), rosterSvc)
	financeSvc := finance.NewService(sqlxrepos.NewFinanceRepository(db), rosterSvc)

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	// start the nightly auto-absence sweeper
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	sweeper := attendance.NewSweeper(attendanceSvc, rosterSvc, logger)
	go sweeper.Run(sweepCtx)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:          core.Conf.Server.Addr(),
			Logger:        logger,
			UserSvc:       usrSvc,
			RosterSvc:     rosterSvc,
			AttendanceSvc: attendanceSvc,
			InstrumentSvc: instrumentSvc,
			FinanceSvc:    financeSvc,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening on " + core.Conf.Server.Addr())
		serverErrors <- app.Start()
	}()

	// wait for shutdown
	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-app.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		cancelSweep()

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err = app.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
