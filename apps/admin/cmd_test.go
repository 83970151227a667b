package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/attendance"
	"github.com/aptcrew/rollbook/core/roster"
	"github.com/aptcrew/rollbook/core/user"
	emailsvc "github.com/aptcrew/rollbook/services/email"
	logsvc "github.com/aptcrew/rollbook/services/logger"
	inmemdb "github.com/aptcrew/rollbook/storage/database/inmem"
)

var (
	db      *inmemdb.DB
	usrRepo user.Repository
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	// set up DB & repos
	var err error
	if db, err = inmemdb.Open(); err != nil {
		t.Fatalf("inmemdb.Open() failed, %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)

	svcLogger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), core.Conf)
	rosterSvc := roster.NewService(inmemdb.NewRosterRepository(db))
	attendanceStore := inmemdb.NewAttendanceStore(db)
	attendanceSvc := attendance.NewService(attendanceStore, attendanceStore, rosterSvc, emailsvc.NewConsoleServiceMock(), svcLogger)

	// start CLI
	return &commandLine{
		usrRepo:       usrRepo,
		attendanceSvc: attendanceSvc,
		sweeper:       attendance.NewSweeper(attendanceSvc, rosterSvc, svcLogger),
	}
}

func createUser(t *testing.T, uname, email, pwd string, isActive bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.New().String(),
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "awe", "awe@test.cd", "mdr", true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := createUser(t, "drummer", "drummer@test.cd", "mdr", false)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no email", args: []string{"adduser", "-username", "lol"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-username", "lol", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-username", "newbie", "-email", "newbie@test.cd"}, extra: extra{pwd: "lol"}},
		{name: "create admin", args: []string{"adduser", "-username", "boss", "-email", "boss@test.cd", "-admin"}, extra: extra{pwd: "lol"}},
		{name: "update existing", args: []string{"adduser", "-username", existing.Username, "-email", existing.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			uname := tt.args[2]
			usr, err := usrRepo.GetUserByUsernameOrEmail(context.Background(), uname)
			if err != nil {
				t.Fatalf("GetUserByUsernameOrEmail() failed, %v", err)
			}
			if !usr.IsActive {
				t.Error("expected user to be active")
			}
			if tt.name == "create admin" && !usr.IsAdmin() {
				t.Error("expected user to be admin")
			}
			if tt.name == "update existing" && bytes.Equal(usr.PasswordHash, existing.PasswordHash) {
				t.Error("failed to update password")
			}
		})
	}
}

func Test_commandLine_sweep(t *testing.T) {
	cli := setup(t)

	section := "Core Adults"
	db.AddSections(roster.Section{Name: section, Position: 1})
	db.AddMembers(
		roster.Member{Section: section, Name: "Abi", Position: 1},
		roster.Member{Section: section, Name: "Bala", Position: 2},
		roster.Member{Section: section, Name: "Chandra", Position: 3},
	)

	ctx := context.Background()
	today := cli.attendanceSvc.Today()

	// no records yet: no meeting, nothing to sweep
	if err := cli.sweep(""); err != nil {
		t.Fatalf("cli.sweep() failed, %v", err)
	}
	if statuses, _ := cli.attendanceSvc.TodayStatus(ctx, section); len(statuses) != 0 {
		t.Errorf("expected no records, got %v", statuses)
	}

	// one member marked present: the rest get auto-absence
	if _, err := cli.attendanceSvc.Mark(ctx, section, "Abi", attendance.StatusPresent, "tester"); err != nil {
		t.Fatalf("Mark() failed, %v", err)
	}
	if err := cli.sweep(today); err != nil {
		t.Fatalf("cli.sweep() failed, %v", err)
	}
	statuses, err := cli.attendanceSvc.TodayStatus(ctx, section)
	if err != nil {
		t.Fatalf("TodayStatus() failed, %v", err)
	}
	want := attendance.StatusMap{"Abi": attendance.StatusPresent, "Bala": attendance.StatusAbsent, "Chandra": attendance.StatusAbsent}
	if len(statuses) != len(want) {
		t.Fatalf("TodayStatus() = %v, want %v", statuses, want)
	}
	for name, status := range want {
		if statuses[name] != status {
			t.Errorf("TodayStatus()[%s] = %s, want %s", name, statuses[name], status)
		}
	}

	// a re-run is a no-op: the day is already claimed
	if _, err := cli.attendanceSvc.Mark(ctx, section, "Bala", attendance.StatusPresent, "tester"); err != nil {
		t.Fatalf("Mark() failed, %v", err)
	}
	if err := cli.sweep(today); err != nil {
		t.Fatalf("cli.sweep() failed, %v", err)
	}
	statuses, _ = cli.attendanceSvc.TodayStatus(ctx, section)
	if statuses["Bala"] != attendance.StatusPresent {
		t.Errorf("re-run overwrote Bala's status: %s", statuses["Bala"])
	}

	// bad date
	if err := cli.sweep("28-08-2026"); err == nil {
		t.Error("expected an error for a malformed date")
	}
}
