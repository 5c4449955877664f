// Package tunamud contains a CLI-driven client for playing on a TunaMUD
// server. It reads commands from the player, sends them to the server, and
// shows what the server sends back until the player quits.
package tunamud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/dekarrin/tunamud/internal/command"
	"github.com/dekarrin/tunamud/internal/config"
	"github.com/dekarrin/tunamud/internal/console"
	"github.com/dekarrin/tunamud/internal/dispatch"
	"github.com/dekarrin/tunamud/internal/history"
	"github.com/dekarrin/tunamud/internal/input"
	"github.com/dekarrin/tunamud/internal/protocol"
	"github.com/dekarrin/tunamud/internal/session"
	"github.com/dekarrin/tunamud/internal/store"
	"github.com/dekarrin/tunamud/internal/tmerrors"
	"github.com/dekarrin/tunamud/internal/transport"
	"go.uber.org/zap"
)

const (
	consolePrompt  = "> "
	passwordPrompt = "Password: "

	// clientCommandPrefix starts commands that are handled by the client
	// instead of being sent to the server.
	clientCommandPrefix = "#"

	// createReplyTimeout is how long input is held back by default waiting
	// for the server to answer a character creation.
	createReplyTimeout = 30 * time.Second
)

// lineRequest asks the input goroutine for the next line.
type lineRequest struct {
	prompt     string
	mask       bool
	allowBlank bool

	// unrecorded keeps the line out of command history.
	unrecorded bool
}

type lineResult struct {
	line string
	err  error
}

// Engine contains the things needed to run a client session from an
// interactive shell attached to an input stream and an output stream.
//
// Everything the Engine does happens on the goroutine that called
// RunUntilQuit, in response to either a line of input or an event from the
// connection. Reading input and reading from the network are the only work
// done elsewhere.
type Engine struct {
	in          command.Reader
	hist        *history.Ring
	interactive bool
	forceDirect bool
	insecure    bool
	host        string

	ui    *console.Console
	store store.Store
	conn  *transport.Manager
	sess  *session.Manager
	disp  dispatch.Dispatcher
	log   *zap.Logger

	events   chan transport.Event
	requests chan lineRequest
	lines    chan lineResult

	// loginName is set after #login until the password line arrives.
	loginName string

	// form is the character creation form being filled in, if any.
	form *creationForm

	// createDeadline is non-nil while a submitted form waits on the server.
	// No lines are requested during that time.
	createDeadline <-chan time.Time
	createTimeout  time.Duration

	running bool
}

// New creates a new engine ready to operate on the given input and output
// streams using the given configuration. The durable store named in cfg is
// opened immediately.
//
// If nil is given for the input stream, stdin is used. If nil is given for
// the output stream, stdout is used. If log is nil, nothing is logged.
func New(inputStream io.Reader, outputStream io.Writer, cfg config.Config, forceDirectInput bool, log *zap.Logger) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}
	if log == nil {
		log = zap.NewNop()
	}

	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	storeCfg, err := config.ParseStoreConnString(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	st, err := storeCfg.Connect()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	eng := &Engine{
		forceDirect: forceDirectInput,
		insecure:    cfg.Server.Insecure,
		host:        cfg.Server.Host,
		store:       st,
		log:         log,
		events:      make(chan transport.Event, 16),
		requests:    make(chan lineRequest, 1),
		lines:       make(chan lineResult),

		createTimeout: createReplyTimeout,
	}

	hist := history.NewRing(history.Capacity)
	eng.hist = hist
	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout

	if useReadline {
		icr, err := input.NewInteractiveReader(hist)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
		eng.in = icr
		eng.interactive = true
		outputStream = icr.Output()
	} else {
		eng.in = input.NewDirectReader(inputStream, hist)
	}

	eng.ui = console.New(outputStream, console.Options{
		Width:   cfg.Console.Width,
		NoColor: cfg.Console.NoColor,
	}, log.Named("console"))

	eng.conn = transport.New(transport.Config{
		Host:         cfg.Server.Host,
		Path:         cfg.Server.Path,
		Insecure:     cfg.Server.Insecure,
		DialTimeout:  cfg.Server.DialTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}, eng.events, transport.ReceiverFunc(eng.receive), log.Named("transport"))
	eng.conn.OnOpen = eng.connected
	eng.conn.OnClosed = eng.disconnected

	eng.sess = session.New(eng.conn, st, eng.ui, log.Named("session"))
	eng.sess.OnCreateRejected = eng.createRejected

	eng.disp = dispatch.Dispatcher{Session: eng.sess, UI: eng.ui, Log: log.Named("dispatch")}

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode and the durable
// store.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running client engine")
	}

	err := eng.in.Close()
	if err != nil {
		return fmt.Errorf("close command reader: %w", err)
	}

	if err := eng.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	return nil
}

// RunUntilQuit begins reading commands from the input stream and handling
// the connection until the player quits, input ends, or ctx is done. If
// autoConnect is set, a connection to the server is started right away.
func (eng *Engine) RunUntilQuit(ctx context.Context, autoConnect bool) error {
	introMsg := "Welcome to TunaMUD\n"
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "==================\n"
	introMsg += "Type #help for client commands."
	eng.ui.Notice(introMsg)

	eng.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		eng.running = false
	}()

	done := make(chan struct{})
	defer close(done)
	go eng.pumpInput(done)

	defer func() {
		eng.conn.Close()
		eng.conn.Shutdown()
	}()

	if autoConnect {
		eng.connect(ctx)
	}
	eng.requestLine()

	for eng.running {
		select {
		case ev := <-eng.events:
			eng.conn.Handle(ev)
			eng.checkCreateDone()
		case res := <-eng.lines:
			if res.err != nil {
				if errors.Is(res.err, io.EOF) || errors.Is(res.err, readline.ErrInterrupt) {
					eng.running = false
					break
				}
				return fmt.Errorf("get user input: %w", res.err)
			}
			eng.handleLine(ctx, res.line)
			if eng.running && eng.createDeadline == nil {
				eng.requestLine()
			}
		case <-eng.createDeadline:
			eng.log.Warn("no reply to character creation")
			eng.createDeadline = nil
			eng.form = nil
			eng.sess.Abandon()
			eng.ui.Notice("The server never answered. Type #create to try again.")
			eng.requestLine()
		case <-ctx.Done():
			eng.running = false
		}
	}

	if err := eng.conn.Close(); err != nil {
		eng.log.Warn("close connection", zap.Error(err))
	}
	eng.ui.Notice("Goodbye")
	return nil
}

// pumpInput reads one line each time one is requested. It is the only
// goroutine that touches the Reader while the Engine runs.
func (eng *Engine) pumpInput(done <-chan struct{}) {
	for {
		var req lineRequest
		select {
		case req = <-eng.requests:
		case <-done:
			return
		}

		var res lineResult
		if req.mask {
			res.line, res.err = eng.in.ReadPassword(req.prompt)
		} else {
			eng.in.SetPrompt(req.prompt)
			eng.in.AllowBlank(req.allowBlank)
			eng.in.KeepHistory(!req.unrecorded)
			res.line, res.err = eng.in.ReadCommand()
		}

		select {
		case eng.lines <- res:
		case <-done:
			return
		}
	}
}

func (eng *Engine) requestLine() {
	req := lineRequest{prompt: consolePrompt}
	switch {
	case eng.loginName != "":
		req = lineRequest{prompt: passwordPrompt, mask: true}
	case eng.form != nil:
		fld := eng.form.current()
		req = lineRequest{prompt: fld.prompt, mask: fld.mask, allowBlank: fld.optional, unrecorded: true}
	}

	// a direct reader has no prompt of its own
	if !eng.interactive && req.prompt != consolePrompt {
		eng.ui.Prompt(req.prompt)
	}
	eng.requests <- req
}

func (eng *Engine) handleLine(ctx context.Context, line string) {
	switch {
	case eng.loginName != "":
		name := eng.loginName
		eng.loginName = ""
		if err := eng.sess.Login(ctx, name, line); err != nil {
			eng.ui.Problem(err)
		}
	case eng.form != nil:
		eng.answerForm(ctx, line)
	case strings.HasPrefix(line, clientCommandPrefix):
		eng.clientCommand(ctx, line)
	default:
		eng.gameCommand(line)
	}
}

func (eng *Engine) gameCommand(line string) {
	cmd, err := command.ParseLine(line)
	if err != nil {
		eng.log.Debug("parse failed", zap.Error(err))
		eng.ui.Problem(err)
		return
	}

	if eng.conn.State() != transport.Open {
		eng.ui.Problem(tmerrors.ErrNotConnected)
		return
	}

	req := protocol.ActionRequest{Action: cmd.Action.String(), Args: cmd.Args}
	if err := eng.conn.Send(protocol.KindAction, req); err != nil {
		eng.ui.Problem(err)
	}
}

var clientCommandHelp = [][]string{
	{"Command", "Does"},
	{"#connect", "connect to the server"},
	{"#disconnect", "close the connection"},
	{"#login NAME", "log in as an existing character"},
	{"#create", "create a new character"},
	{"#logout", "log out and forget the saved session"},
	{"#whoami", "show who you are logged in as"},
	{"#aliases", "show every short form of each game command"},
	{"#help", "show this list"},
	{"#quit", "leave the client"},
}

func (eng *Engine) clientCommand(ctx context.Context, line string) {
	args := strings.Fields(strings.TrimPrefix(line, clientCommandPrefix))
	if len(args) < 1 {
		eng.ui.Notice("Type #help for client commands.")
		return
	}
	name := strings.ToLower(args[0])
	args = args[1:]

	switch name {
	case "connect":
		eng.connect(ctx)
	case "disconnect":
		if eng.conn.State() == transport.Closed {
			eng.ui.Notice("You are not connected.")
			return
		}
		if err := eng.conn.Close(); err != nil {
			eng.ui.Problem(err)
		}
	case "login":
		if len(args) != 1 {
			eng.ui.Notice("Usage: #login NAME")
			return
		}
		if !eng.readyForAuth() {
			return
		}
		eng.loginName = args[0]
	case "create":
		if !eng.readyForAuth() {
			return
		}
		eng.form = &creationForm{}
		eng.ui.Notice("Creating a new character. Optional fields may be left blank.")
	case "logout":
		if err := eng.sess.Logout(ctx); err != nil {
			if errors.Is(err, tmerrors.ErrInvalidState) {
				eng.ui.Notice("You are not logged in.")
				return
			}
			eng.ui.Problem(err)
			return
		}
		eng.ui.Notice("You have logged out.")
	case "whoami":
		info, err := eng.sess.Info(ctx)
		if err != nil {
			eng.ui.Problem(err)
		}
		eng.ui.Notice(info.String())
		eng.ui.Notice(fmt.Sprintf("Connection: %s %s", eng.conn.State(), eng.conn.URL()))
	case "aliases":
		eng.ui.Table(aliasTable())
	case "help":
		eng.ui.Table(clientCommandHelp)
	case "quit", "exit":
		eng.running = false
	default:
		eng.ui.Notice(fmt.Sprintf("%q is not a client command. Type #help for a list.", clientCommandPrefix+name))
	}
}

// readyForAuth checks that a login or creation can be started now, telling
// the player why not if it cannot.
func (eng *Engine) readyForAuth() bool {
	if eng.conn.State() != transport.Open {
		eng.ui.Problem(tmerrors.ErrNotConnected)
		return false
	}
	if eng.sess.Pending() {
		eng.ui.Problem(tmerrors.ErrRequestPending)
		return false
	}
	if eng.sess.State() == session.Authenticated {
		eng.ui.Notice("You are already logged in as " + eng.sess.PlayerName() + ". Type #logout first.")
		return false
	}
	return true
}

func (eng *Engine) connect(ctx context.Context) {
	if eng.conn.State() != transport.Closed {
		eng.ui.Notice("Already connected.")
		return
	}
	if err := eng.conn.Connect(ctx); err != nil {
		eng.ui.Problem(err)
		return
	}
	eng.ui.Notice("Connecting to " + eng.host + "...")
}

func (eng *Engine) receive(data []byte) {
	eng.disp.Receive(context.Background(), data)
}

func (eng *Engine) connected() {
	msg := "Connected to " + eng.conn.URL() + "."
	if !eng.insecure && strings.HasPrefix(eng.conn.URL(), "ws:") {
		msg += " A secure connection could not be made; this one is not encrypted."
	}
	eng.ui.Notice(msg)

	if err := eng.sess.Restore(context.Background()); err != nil {
		eng.ui.Problem(err)
	}
}

func (eng *Engine) disconnected(err error) {
	eng.sess.Disconnected()
	if eng.createDeadline != nil {
		eng.form = nil
	}

	if err != nil {
		eng.ui.Problem(err)
		return
	}
	eng.ui.Notice("Disconnected.")
}

func (eng *Engine) answerForm(ctx context.Context, line string) {
	done, err := eng.form.answer(line)
	if err != nil {
		eng.ui.Problem(err)
		return
	}
	if !done {
		return
	}

	eng.form.retryName = false
	if err := eng.sess.CreateCharacter(ctx, eng.form.data); err != nil {
		eng.form = nil
		eng.ui.Problem(err)
		eng.ui.Notice("Type #create to start over.")
		return
	}
	eng.createDeadline = time.After(eng.createTimeout)
}

func (eng *Engine) createRejected(err error) {
	if eng.form == nil {
		return
	}
	eng.form.askNameAgain()
	eng.ui.Notice("Choose a different name; everything else you entered is kept.")
}

// checkCreateDone resumes reading input once a submitted creation form has
// been answered one way or the other.
func (eng *Engine) checkCreateDone() {
	if eng.createDeadline == nil || eng.sess.Pending() {
		return
	}
	eng.createDeadline = nil
	if eng.form != nil && !eng.form.retryName {
		eng.form = nil
	}
	if eng.running {
		eng.requestLine()
	}
}

func aliasTable() [][]string {
	aliases := command.Aliases()

	verbs := make([]string, 0, len(aliases))
	for v := range aliases {
		verbs = append(verbs, string(v))
	}
	sort.Strings(verbs)

	data := [][]string{{"Command", "Also"}}
	for _, v := range verbs {
		data = append(data, []string{v, strings.Join(aliases[command.Verb(v)], ", ")})
	}
	return data
}
