package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/infra/config"
	"github.com/pulsefeed/pulse/infra/editor"
	"github.com/pulsefeed/pulse/infra/logging"
	"github.com/pulsefeed/pulse/infra/memstore"
	"github.com/pulsefeed/pulse/infra/pulsebase"
	"github.com/pulsefeed/pulse/social"
	"github.com/pulsefeed/pulse/store"
	"github.com/pulsefeed/pulse/tech"
	"github.com/pulsefeed/pulse/tui"
	"github.com/pulsefeed/pulse/tui/feed"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliMode int

const (
	cliRun cliMode = iota
	cliVersion
	cliHelp
	cliInvalid
)

func parseCLIArgs(args []string) (cliMode, string) {
	if len(args) == 0 {
		return cliRun, ""
	}

	switch args[0] {
	case "--version", "-version", "-v":
		return cliVersion, ""
	case "--help", "-h", "help":
		return cliHelp, ""
	default:
		return cliInvalid, fmt.Sprintf("unexpected argument: %s", strings.Join(args, " "))
	}
}

func usage() string {
	return "Usage: pulse [--version|-version|-v] [--help|-h]"
}

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

// buildBackend picks the storage, auth, and blob implementations from
// config. The in-memory backend exists for demos and development.
func buildBackend(cfg config.Config) (store.Store, store.AuthClient, store.BlobClient) {
	if cfg.Backend == config.BackendPulsebase {
		auth := pulsebase.NewAuth(cfg.BackendURL, cfg.APIKey)
		client := pulsebase.NewClient(cfg.BackendURL, cfg.APIKey, auth)
		return pulsebase.NewStore(client), auth, pulsebase.NewBlobs(client)
	}
	return memstore.New(), memstore.NewAuth([]byte("pulse-local")), memstore.NewBlobs()
}

// wireListeners connects service pushes to the program as messages and
// applies the restored feed scope. Must run off the main goroutine: the
// registrations invoke their callbacks immediately, and send blocks
// until the program loop is reading.
func wireListeners(send func(tea.Msg), feedSvc *social.Feed, commentsSvc *social.Comments, sessionSvc *social.Session, scope app.FeedScope, log *zap.Logger) {
	feedSvc.SetListener(func(posts []domain.Post, total int) {
		send(feed.PostsUpdatedMsg{Posts: posts, Total: total})
	})
	commentsSvc.SetListener(func(postID string, comments []domain.Comment) {
		send(feed.CommentsUpdatedMsg{PostID: postID, Comments: comments})
	})
	sessionSvc.OnChange(func(user domain.User, signedIn bool) {
		send(tui.SessionChangedMsg{User: user, SignedIn: signedIn})
	})
	if err := feedSvc.SetScope(scope); err != nil {
		log.Warn("initial feed scope", zap.Error(err))
	}
}

func main() {
	mode, msg := parseCLIArgs(os.Args[1:])
	switch mode {
	case cliVersion:
		v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
		fmt.Printf("Pulse %s\ncommit: %s\nbuilt: %s\n", v, c, d)
		return
	case cliHelp:
		fmt.Println(usage())
		return
	case cliInvalid:
		fmt.Fprintf(os.Stderr, "%s\n%s\n", msg, usage())
		os.Exit(1)
	}

	// 1. Load config from environment.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to a file; the TUI owns the terminal.
	log, err := logging.New(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 2. Build infrastructure.
	st, auth, blobs := buildBackend(cfg)
	editorSvc := editor.NewEnvEditor()

	// 3. Build services (concrete types satisfy app.* interfaces).
	sessionSvc := social.NewSession(auth, st, log)
	defer sessionSvc.Close()
	feedSvc := social.NewFeed(st, sessionSvc, log)
	defer feedSvc.Close()
	commentsSvc := social.NewComments(st, sessionSvc, log)
	defer commentsSvc.Close()
	reactionsSvc := social.NewReactions(st, sessionSvc, log)
	bulkSvc := social.NewBulk(reactionsSvc, sessionSvc, log)
	searchSvc := social.NewSearch(st, log)
	profileSvc := social.NewProfile(st, auth, blobs, sessionSvc, log)
	techSvc := tech.New(log)

	uiState, _ := config.LoadUIState(cfg.StatePath)

	// 4. Wire root TUI model.
	var p *tea.Program
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}
	rootModel := tui.NewApp(tui.Deps{
		Feed:      feedSvc,
		Comments:  commentsSvc,
		Reactions: reactionsSvc,
		Bulk:      bulkSvc,
		Search:    searchSvc,
		Session:   sessionSvc,
		Profiles:  profileSvc,
		Tech:      techSvc,
		Editor:    editorSvc,
		Send:      send,
	})
	p = tea.NewProgram(rootModel, tea.WithAltScreen())

	// Listener registration fires the callbacks synchronously and
	// Program.Send blocks until Run's event loop is up, so wiring
	// happens on its own goroutine.
	go wireListeners(send, feedSvc, commentsSvc, sessionSvc, app.FeedScope{UserID: uiState.ScopeUserID}, log)

	// 5. Run.
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pulse: %v\n", err)
		os.Exit(1)
	}

	if a, ok := final.(tui.App); ok {
		state := config.UIState{
			View:        a.ActiveView(),
			ScopeUserID: feedSvc.Scope().UserID,
		}
		if err := config.SaveUIState(cfg.StatePath, state); err != nil {
			log.Warn("saving ui state", zap.Error(err))
		}
	}
}
