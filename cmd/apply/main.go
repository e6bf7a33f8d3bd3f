package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"github.com/ThanimaVITC/thanima-connect/internal/client"
	"github.com/ThanimaVITC/thanima-connect/internal/department"
	"github.com/ThanimaVITC/thanima-connect/internal/wizard"
	"github.com/ThanimaVITC/thanima-connect/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	flag "github.com/spf13/pflag"
)

const usage = `
Apply to Thanima from the terminal.

Usage:

apply [-h] [-s SERVER_URL] [--flag-file PATH] [--reset]

At any prompt: press Enter to keep the current answer, type :back for the
previous step or :quit to leave without submitting.
`

var labels = map[string]string{
	application.FieldName:                    "Full name",
	application.FieldRegNo:                   "Registration number (e.g. 24BYB1234)",
	application.FieldBranchAndYear:           "Branch and year of study (e.g. CSE, 2nd Year)",
	application.FieldEmail:                   "Email address",
	application.FieldPhone:                   "WhatsApp number",
	application.FieldPreviousExperience:      "Previous roles in Thanima or another cultural/literary club (optional)",
	application.FieldPrimaryPreference:       "Primary department",
	application.FieldSecondaryPreference:     "Secondary department",
	application.FieldTertiaryPreference:      "Tertiary department (optional)",
	application.FieldDepartmentJustification: "Why have you chosen these departments?",
	application.FieldSkillsAndExperience:     "What skills, prior experience, or qualities make you suitable for these departments?",
	application.FieldResume:                  "Path to résumé or portfolio file (optional, - to remove)",
	application.FieldBonusEssay1:             "Describe one Malayalam movie and why you picked it (optional)",
	application.FieldBonusEssay2:             "One unforgettable memory or cultural tradition from Kerala that inspires you (optional)",
}

var (
	errQuit = errors.New("quit")
	errBack = errors.New("back")
)

func main() {
	var showHelp, reset bool
	var server, flagPath string
	flag.BoolVarP(&showHelp, "help", "h", false, "show help")
	flag.StringVarP(&server, "server", "s", "http://localhost:8080", "application server base URL")
	flag.StringVar(&flagPath, "flag-file", "", "where to remember that you applied (default: user config dir)")
	flag.BoolVar(&reset, "reset", false, "forget an earlier application on this machine")
	flag.Parse()

	if showHelp {
		fmt.Print(usage + "\n")
		flag.PrintDefaults()
		return
	}
	logger.Init(os.Getenv("LOG_LEVEL"))

	if flagPath == "" {
		p, err := wizard.DefaultFlagPath()
		if err != nil {
			logger.Fatalf("cannot locate config dir: %v", err)
		}
		flagPath = p
	}
	flags := wizard.NewFileFlag(flagPath)
	if reset {
		if err := flags.Reset(); err != nil {
			logger.Fatalf("reset: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := wizard.New(application.NewValidator(application.Limits{}), client.New(server), flags)
	if err := run(ctx, w, os.Stdin, os.Stdout); err != nil && !errors.Is(err, errQuit) {
		logger.Fatalf("%v", err)
	}
}

// run drives w until it reaches a terminal state or input ends.
func run(ctx context.Context, w *wizard.Wizard, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	for !w.State().Terminal() {
		n, total := w.Progress()
		fmt.Fprintf(out, "\n[%d/%d] %s\n", n, total, w.State())

		err := askStep(sc, out, w)
		switch {
		case errors.Is(err, errBack):
			w.Back()
			continue
		case err != nil:
			return err
		}

		if w.Next(ctx) {
			continue
		}
		if e := w.Err(); e != nil {
			fmt.Fprintf(out, "Submission failed: %v\n", e)
		}
		for _, f := range w.Fields() {
			if msg, ok := w.FieldErrors()[f]; ok {
				fmt.Fprintf(out, "  %s: %s\n", labels[f], msg)
			}
		}
		if msg, ok := w.FieldErrors()[application.FormErrorKey]; ok {
			fmt.Fprintf(out, "  %s\n", msg)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	switch w.State() {
	case wizard.Submitted:
		fmt.Fprintln(out, "\nApplication submitted. Thank you for applying to Thanima!")
	case wizard.AlreadyApplied:
		fmt.Fprintln(out, "Application already submitted from this machine.")
	}
	return nil
}

func askStep(sc *bufio.Scanner, out io.Writer, w *wizard.Wizard) error {
	for _, field := range w.Fields() {
		if opts := w.Options(field); opts != nil {
			if err := askDepartment(sc, out, w, field, opts); err != nil {
				return err
			}
			continue
		}
		if field == application.FieldResume {
			if err := askResume(sc, out, w); err != nil {
				return err
			}
			continue
		}
		line, err := prompt(sc, out, labels[field], w.Value(field))
		if err != nil {
			return err
		}
		if line != "" {
			w.Set(field, line)
		}
	}
	return nil
}

func askDepartment(sc *bufio.Scanner, out io.Writer, w *wizard.Wizard, field string, opts []department.Department) error {
	for i, d := range opts {
		fmt.Fprintf(out, "  %d) %s: %s\n", i+1, d, department.Describe(d))
	}
	line, err := prompt(sc, out, labels[field], w.Value(field))
	if err != nil || line == "" {
		return err
	}
	if i, err := strconv.Atoi(line); err == nil && i >= 1 && i <= len(opts) {
		line = string(opts[i-1])
	}
	if line == "-" {
		line = ""
	}
	w.Set(field, line)
	return nil
}

func askResume(sc *bufio.Scanner, out io.Writer, w *wizard.Wizard) error {
	current := ""
	if r := w.Resume(); r != nil {
		current = r.Path
	}
	line, err := prompt(sc, out, labels[application.FieldResume], current)
	if err != nil || line == "" {
		return err
	}
	if line == "-" {
		w.SetResume(nil)
		return nil
	}
	r, err := openResume(line)
	if err != nil {
		fmt.Fprintf(out, "  cannot use %s: %v\n", line, err)
		return nil
	}
	w.SetResume(r)
	return nil
}

func openResume(path string) (*wizard.Resume, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, err
	}
	return &wizard.Resume{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: mt.String(),
		Size:        st.Size(),
	}, nil
}

func prompt(sc *bufio.Scanner, out io.Writer, label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	line := strings.TrimSpace(sc.Text())
	switch line {
	case ":back":
		return "", errBack
	case ":quit":
		return "", errQuit
	}
	return line, nil
}
