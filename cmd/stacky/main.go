// stacky is an interactive workbench for keyed stacks.
//
// It keeps a pool of named stack handles in memory and exposes the full
// stack API at a prompt, which makes it easy to poke at the copy-on-write
// behavior: clone a handle, mutate one side, dump both.
//
// Usage:
//
//	stacky [options]
//
// Options:
//
//	-c, --config <file>   Load configuration from a JSONC file
//	-s, --script <file>   Run a script before the prompt opens
//	    --prompt <label>  Prompt label override
//	    --no-history      Do not load or save prompt history
//
// Commands (in REPL):
//
//	push <key> <value>      Push an entry for key
//	pop [key]               Pop the newest entry, or key's newest entry
//	top [key]               Show the newest entry, or key's newest entry
//	set <value>             Overwrite the top value in place
//	set <key> <value>       Overwrite key's top value in place
//	len                     Total entries in the current handle
//	count <key>             Entries for key
//	keys                    Distinct keys, ascending, with counts
//	clear                   Remove all entries
//	dump [handle]           List entries, newest first
//	new <name>              Create an empty handle and switch to it
//	clone <dst>             dst becomes a copy of the current handle
//	assign <src>            Current handle becomes a copy of src
//	swap <other>            Exchange contents with another handle
//	use <name>              Switch the current handle
//	handles                 List handles
//	fill <count> [prefix]   Push N entries over a small key space
//	bench <count>           Time N pushes and N pops
//	config                  Show the effective configuration
//	record on|off           Capture typed commands
//	save <file>             Write the captured commands to a script
//	replay <file>           Run a script
//	help                    Show this help
//	exit / quit / q         Exit
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/calvinalkan/keystack"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := flag.NewFlagSet("stacky", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	configPath := flagSet.StringP("config", "c", "", "load configuration from a JSONC file")
	scriptPath := flagSet.StringP("script", "s", "", "run a script before the prompt opens")
	promptFlag := flagSet.String("prompt", "", "prompt label override")
	noHistory := flagSet.Bool("no-history", false, "do not load or save prompt history")

	parseErr := flagSet.Parse(os.Args[1:])
	if parseErr != nil {
		if errors.Is(parseErr, flag.ErrHelp) {
			printUsage()

			return nil
		}

		return parseErr
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	cfg, sources, err := LoadConfig(
		workDir,
		*configPath,
		Config{Prompt: *promptFlag},
		flagSet.Changed("prompt"),
		os.Environ(),
	)
	if err != nil {
		return err
	}

	r := newREPL(cfg, sources, !*noHistory)

	if *scriptPath != "" {
		quit, scriptErr := r.runScript(*scriptPath)
		if scriptErr != nil {
			return scriptErr
		}

		if quit {
			return nil
		}
	}

	return r.Run()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: stacky [options]\n\n")
	fmt.Fprintf(os.Stderr, "Interactive workbench for keyed stacks.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  -c, --config <file>   Load configuration from a JSONC file\n")
	fmt.Fprintf(os.Stderr, "  -s, --script <file>   Run a script before the prompt opens\n")
	fmt.Fprintf(os.Stderr, "      --prompt <label>  Prompt label override\n")
	fmt.Fprintf(os.Stderr, "      --no-history      Do not load or save prompt history\n")
	fmt.Fprintf(os.Stderr, "\nType 'help' at the prompt for the command list.\n")
}

// repl is the interactive command loop over a pool of named handles.
type repl struct {
	cfg     Config
	sources ConfigSources

	handles map[string]*keystack.Stack[string, string]
	order   []string
	current string

	line    *liner.State
	history bool

	recording  bool
	transcript []string
	replaying  bool
}

func newREPL(cfg Config, sources ConfigSources, history bool) *repl {
	r := &repl{
		cfg:     cfg,
		sources: sources,
		handles: make(map[string]*keystack.Stack[string, string]),
		history: history,
	}

	r.addHandle(cfg.DefaultHandle, keystack.New[string, string]())
	r.current = cfg.DefaultHandle

	return r
}

// addHandle registers a handle, keeping creation order for listings.
func (r *repl) addHandle(name string, s *keystack.Stack[string, string]) {
	if _, exists := r.handles[name]; !exists {
		r.order = append(r.order, name)
	}

	r.handles[name] = s
}

// stack returns the current handle.
func (r *repl) stack() *keystack.Stack[string, string] {
	return r.handles[r.current]
}

// historyFile returns the path to the history file.
func (r *repl) historyFile() string {
	if r.cfg.HistoryFile != "" {
		return r.cfg.HistoryFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".stacky_history")
}

func (r *repl) prompt() string {
	return fmt.Sprintf("%s:%s> ", r.cfg.Prompt, r.current)
}

// Run starts the REPL loop.
func (r *repl) Run() error {
	r.line = liner.NewLiner()
	defer r.line.Close()

	r.line.SetCtrlCAborts(true)
	r.line.SetCompleter(r.completer)

	if r.history {
		if f, err := os.Open(r.historyFile()); err == nil {
			r.line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Printf("stacky - keyed stack workbench (handle=%s)\n", r.current)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		input, err := r.line.Prompt(r.prompt())
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		r.line.AppendHistory(input)

		if r.execute(input) {
			fmt.Println("Bye!")

			break
		}
	}

	r.saveHistory()

	return nil
}

// execute runs one command line. It returns true when the session
// should end.
func (r *repl) execute(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	// The transcript captures what was typed, not what it printed.
	// Recording control commands are not part of a session worth
	// replaying.
	if r.recording {
		switch cmd {
		case "record", "save":
		default:
			r.transcript = append(r.transcript, input)
		}
	}

	switch cmd {
	case "exit", "quit", "q":
		return true

	case "help", "?":
		r.printHelp()

	case "push":
		r.cmdPush(args)

	case "pop":
		r.cmdPop(args)

	case "top":
		r.cmdTop(args)

	case "set":
		r.cmdSet(args)

	case "len":
		fmt.Printf("Entries: %d\n", r.stack().Len())

	case "count":
		r.cmdCount(args)

	case "keys":
		r.cmdKeys()

	case "clear":
		r.stack().Clear()
		fmt.Printf("OK: cleared %s\n", r.current)

	case "dump":
		r.cmdDump(args)

	case "new":
		r.cmdNew(args)

	case "clone":
		r.cmdClone(args)

	case "assign":
		r.cmdAssign(args)

	case "swap":
		r.cmdSwap(args)

	case "use":
		r.cmdUse(args)

	case "handles", "ls":
		r.cmdHandles()

	case "fill":
		r.cmdFill(args)

	case "bench":
		r.cmdBench(args)

	case "config":
		r.cmdConfig()

	case "record":
		r.cmdRecord(args)

	case "save":
		r.cmdSave(args)

	case "replay":
		return r.cmdReplay(args)

	case "cls":
		fmt.Print("\033[H\033[2J")

	default:
		fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	return false
}

// saveHistory persists command history to disk.
func (r *repl) saveHistory() {
	if !r.history {
		return
	}

	if path := r.historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
}

// completer provides tab completion for commands.
func (r *repl) completer(input string) []string {
	commands := []string{
		"push", "pop", "top", "set",
		"len", "count", "keys", "clear", "dump",
		"new", "clone", "assign", "swap",
		"use", "handles", "ls",
		"fill", "bench", "config",
		"record", "save", "replay",
		"cls", "help", "exit", "quit", "q",
	}

	var completions []string

	lower := strings.ToLower(input)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (r *repl) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  push <key> <value>      Push an entry for key")
	fmt.Println("  pop [key]               Pop the newest entry, or key's newest entry")
	fmt.Println("  top [key]               Show the newest entry, or key's newest entry")
	fmt.Println("  set <value>             Overwrite the top value in place")
	fmt.Println("  set <key> <value>       Overwrite key's top value in place")
	fmt.Println("  len                     Total entries in the current handle")
	fmt.Println("  count <key>             Entries for key")
	fmt.Println("  keys                    Distinct keys, ascending, with counts")
	fmt.Println("  clear                   Remove all entries")
	fmt.Println("  dump [handle]           List entries, newest first")
	fmt.Println("  new <name>              Create an empty handle and switch to it")
	fmt.Println("  clone <dst>             dst becomes a copy of the current handle")
	fmt.Println("  assign <src>            Current handle becomes a copy of src")
	fmt.Println("  swap <other>            Exchange contents with another handle")
	fmt.Println("  use <name>              Switch the current handle")
	fmt.Println("  handles                 List handles")
	fmt.Println("  fill <count> [prefix]   Push N entries over a small key space")
	fmt.Println("  bench <count>           Time N pushes and N pops")
	fmt.Println("  config                  Show the effective configuration")
	fmt.Println("  record on|off           Capture typed commands")
	fmt.Println("  save <file>             Write the captured commands to a script")
	fmt.Println("  replay <file>           Run a script")
	fmt.Println("  help                    Show this help")
	fmt.Println("  exit / quit / q         Exit")
	fmt.Println()
	fmt.Println("Values may contain spaces; everything after the key is the value.")
}

func (r *repl) cmdPush(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: push <key> <value>")

		return
	}

	key := args[0]
	value := strings.Join(args[1:], " ")

	r.stack().Push(key, value)

	fmt.Printf("OK: pushed %q=%q (len=%d)\n", key, value, r.stack().Len())
}

func (r *repl) cmdPop(args []string) {
	s := r.stack()

	if len(args) == 0 {
		key, value, err := s.Top()
		if err != nil {
			fmt.Printf("Error: %v\n", err)

			return
		}

		if err := s.Pop(); err != nil {
			fmt.Printf("Error: %v\n", err)

			return
		}

		fmt.Printf("OK: popped %q=%q\n", key, value)

		return
	}

	key := args[0]

	value, err := s.TopKey(key)
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	if err := s.PopKey(key); err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	fmt.Printf("OK: popped %q=%q\n", key, value)
}

func (r *repl) cmdTop(args []string) {
	s := r.stack()

	if len(args) == 0 {
		key, value, err := s.Top()
		if err != nil {
			fmt.Printf("Error: %v\n", err)

			return
		}

		fmt.Printf("Key:   %q\nValue: %q\n", key, value)

		return
	}

	value, err := s.TopKey(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	fmt.Printf("Value: %q\n", value)
}

func (r *repl) cmdSet(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: set <value> | set <key> <value>")

		return
	}

	s := r.stack()

	if len(args) == 1 {
		_, ptr, err := s.TopPtr()
		if err != nil {
			fmt.Printf("Error: %v\n", err)

			return
		}

		*ptr = args[0]

		fmt.Printf("OK: set top value to %q\n", args[0])

		return
	}

	key := args[0]
	value := strings.Join(args[1:], " ")

	ptr, err := s.TopKeyPtr(key)
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	*ptr = value

	fmt.Printf("OK: set top of %q to %q\n", key, value)
}

func (r *repl) cmdCount(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: count <key>")

		return
	}

	fmt.Printf("Entries for %q: %d\n", args[0], r.stack().Count(args[0]))
}

func (r *repl) cmdKeys() {
	s := r.stack()
	n := 0

	for key := range s.Keys() {
		fmt.Printf("  %-12s %d\n", key, s.Count(key))
		n++
	}

	if n == 0 {
		fmt.Println("(no keys)")
	}
}

func (r *repl) cmdDump(args []string) {
	name := r.current
	if len(args) >= 1 {
		name = args[0]
	}

	s, ok := r.handles[name]
	if !ok {
		fmt.Printf("Error: no such handle: %s\n", name)

		return
	}

	// Draining a clone leaves the handle untouched.
	c := s.Clone()
	if c.Len() == 0 {
		fmt.Println("(empty)")

		return
	}

	for i := 1; c.Len() > 0; i++ {
		key, value, err := c.Top()
		if err != nil {
			fmt.Printf("Error: %v\n", err)

			return
		}

		fmt.Printf("%3d. %-12s %q\n", i, key, value)

		if err := c.Pop(); err != nil {
			fmt.Printf("Error: %v\n", err)

			return
		}
	}
}

func (r *repl) cmdNew(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: new <name>")

		return
	}

	name := args[0]

	if _, exists := r.handles[name]; exists {
		fmt.Printf("Error: handle already exists: %s (use 'use %s' to switch)\n", name, name)

		return
	}

	r.addHandle(name, keystack.New[string, string]())
	r.current = name

	fmt.Printf("OK: created handle %s\n", name)
}

func (r *repl) cmdClone(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: clone <dst>")

		return
	}

	dst := args[0]
	if dst == r.current {
		fmt.Println("Error: clone target is the current handle")

		return
	}

	r.addHandle(dst, r.stack().Clone())

	fmt.Printf("OK: %s = clone of %s\n", dst, r.current)
}

func (r *repl) cmdAssign(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: assign <src>")

		return
	}

	src, ok := r.handles[args[0]]
	if !ok {
		fmt.Printf("Error: no such handle: %s\n", args[0])

		return
	}

	r.stack().Assign(src)

	fmt.Printf("OK: %s now holds a copy of %s\n", r.current, args[0])
}

func (r *repl) cmdSwap(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: swap <other>")

		return
	}

	other, ok := r.handles[args[0]]
	if !ok {
		fmt.Printf("Error: no such handle: %s\n", args[0])

		return
	}

	r.stack().Swap(other)

	fmt.Printf("OK: swapped %s and %s\n", r.current, args[0])
}

func (r *repl) cmdUse(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: use <name>")

		return
	}

	if _, ok := r.handles[args[0]]; !ok {
		fmt.Printf("Error: no such handle: %s (use 'new %s' to create it)\n", args[0], args[0])

		return
	}

	r.current = args[0]

	fmt.Printf("OK: using %s\n", r.current)
}

func (r *repl) cmdHandles() {
	for _, name := range r.order {
		marker := " "
		if name == r.current {
			marker = "*"
		}

		fmt.Printf("%s %-12s len=%d\n", marker, name, r.handles[name].Len())
	}
}

func (r *repl) cmdFill(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: fill <count> [prefix]")

		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Println("Error: count must be a positive integer")

		return
	}

	prefix := "k"
	if len(args) >= 2 {
		prefix = args[1]
	}

	s := r.stack()
	start := time.Now()

	for i := range count {
		s.Push(fmt.Sprintf("%s%02d", prefix, i%16), strconv.Itoa(i))
	}

	elapsed := time.Since(start)
	rate := float64(count) / elapsed.Seconds()
	fmt.Printf("OK: pushed %d entries in %v (%.0f ops/sec, len=%d)\n",
		count, elapsed.Round(time.Millisecond), rate, s.Len())
}

func (r *repl) cmdBench(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bench <count>")

		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Println("Error: count must be a positive integer")

		return
	}

	// Bench on a scratch stack so the current handle is untouched.
	s := keystack.New[string, string]()

	keys := make([]string, 16)
	for i := range keys {
		keys[i] = fmt.Sprintf("b%02d", i)
	}

	fmt.Printf("Benchmarking %d operations...\n", count)

	pushStart := time.Now()

	for i := range count {
		s.Push(keys[i%len(keys)], strconv.Itoa(i))
	}

	pushElapsed := time.Since(pushStart)

	popStart := time.Now()

	for s.Len() > 0 {
		if popErr := s.Pop(); popErr != nil {
			fmt.Printf("Error: %v\n", popErr)

			return
		}
	}

	popElapsed := time.Since(popStart)

	fmt.Printf("\nResults:\n")
	fmt.Printf("  Pushes: %d ops in %v (%.0f ops/sec)\n",
		count, pushElapsed.Round(time.Millisecond), float64(count)/pushElapsed.Seconds())
	fmt.Printf("  Pops:   %d ops in %v (%.0f ops/sec)\n",
		count, popElapsed.Round(time.Millisecond), float64(count)/popElapsed.Seconds())
}

func (r *repl) cmdConfig() {
	text, err := FormatConfig(r.cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	fmt.Println(text)

	if r.sources.Global != "" {
		fmt.Printf("Global config:  %s\n", r.sources.Global)
	}

	if r.sources.Project != "" {
		fmt.Printf("Project config: %s\n", r.sources.Project)
	}

	if r.sources.Global == "" && r.sources.Project == "" {
		fmt.Println("(defaults; no config file loaded)")
	}
}
