package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	weave "github.com/t-eckert/weave"
)

const (
	appName     = "weave"
	historyFile = ".weave_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("Weave %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", weave.Version)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "watch":
		os.Exit(cmdWatch(os.Args[2:]))
	case "version":
		fmt.Println(weave.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Weave %s (built %s)

Usage:
  %s run <file.wv> [args...]     Run a script; extra args become $1, $2, ...
  %s watch <file.wv> [args...]   Run a script, re-running whenever it changes.
  %s repl                        Start the REPL.
  %s version                     Print the compiled version

`, weave.Version, weave.BuildDate, appName, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.wv> [args...]\n", appName)
		return 2
	}
	return runFile(args[0], args[1:])
}

// runFile executes one script with argv[0] set to the script path. Errors go
// to stderr with a caret snippet pointing into the source.
func runFile(file string, scriptArgs []string) int {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	argv := append([]string{fileAbsOrOrig(file)}, scriptArgs...)
	if err := weave.RunSource(string(src), argv, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, weave.WrapErrorWithSource(err, string(src)))
		return 1
	}
	return 0
}

func fileAbsOrOrig(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	sess := weave.NewSession([]string{"repl"}, os.Stdout)

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			switch strings.TrimSpace(strings.ToLower(code)) {
			case ":quit":
				return 0
			default:
				fmt.Printf("unknown command. Type :quit to exit.\n")
			}
			continue
		}

		if strings.TrimSpace(code) == "" {
			continue
		}

		v, err := sess.Eval(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(weave.WrapErrorWithSource(err, code).Error()))
			continue
		}
		if v.Tag != weave.VTUnit {
			fmt.Println(blue(weave.FormatValue(v)))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readByParseProbe accumulates lines until the input parses, or fails with
// an error that is not just "more input needed".
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := weave.Parse(src)
		if perr == nil {
			return src, true
		}
		if weave.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
