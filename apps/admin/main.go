package main

import (
	"log"
	"os"

	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/attendance"
	"github.com/aptcrew/rollbook/core/roster"
	emailsvc "github.com/aptcrew/rollbook/services/email"
	logsvc "github.com/aptcrew/rollbook/services/logger"
	"github.com/aptcrew/rollbook/storage/database"
	sqlxrepos "github.com/aptcrew/rollbook/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	errAndDie(database.CreateIfNotExist(core.Conf))
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	svcLogger := logsvc.NewRollbarLogger(logger, core.Conf)
	svcLogger.Enable(!core.Conf.Debug)

	rosterSvc := roster.NewService(sqlxrepos.NewRosterRepository(db))
	attendanceStore := sqlxrepos.NewAttendanceStore(db)
	attendanceSvc := attendance.NewService(attendanceStore, attendanceStore, rosterSvc, emailsvc.NewConsoleService(), svcLogger)

	// start CLI
	cli := commandLine{
		db:            db.DB,
		usrRepo:       sqlxrepos.NewUserRepository(db),
		attendanceSvc: attendanceSvc,
		sweeper:       attendance.NewSweeper(attendanceSvc, rosterSvc, svcLogger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
