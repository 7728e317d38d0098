package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/synju/terminal-tetris-screensaver/internal/game"
	"github.com/synju/terminal-tetris-screensaver/internal/ui"
)

const (
	host string = "0.0.0.0"
	port string = "2323"

	maxConnectionsPerIP = 2
)

var (
	ipCounter    = make(map[string]int)
	ipMutex      sync.Mutex
	statsService *game.SessionStatsService
)

func getIP(s ssh.Session) string {
	if addr, ok := s.RemoteAddr().(*net.TCPAddr); ok {
		return addr.IP.String()
	}
	return s.RemoteAddr().String()
}

func incrementIP(ip string) {
	ipMutex.Lock()
	defer ipMutex.Unlock()
	ipCounter[ip]++
}

func decrementIP(ip string) {
	ipMutex.Lock()
	defer ipMutex.Unlock()
	ipCounter[ip]--
	if ipCounter[ip] <= 0 {
		delete(ipCounter, ip)
	}
}

func getCount(ip string) int {
	ipMutex.Lock()
	defer ipMutex.Unlock()
	return ipCounter[ip]
}

func connectionLimiterMiddleware(next ssh.Handler) ssh.Handler {
	return func(s ssh.Session) {
		ip := getIP(s)

		currentCount := getCount(ip)

		if currentCount >= maxConnectionsPerIP {
			log.Warn("Connection denied: IP limit exceeded", "ip", ip, "attempted_count", currentCount+1, "current_limit", maxConnectionsPerIP)
			errorMessage := fmt.Sprintf("Too many active connections from your IP (%d/%d). Please try again later.\r\n", currentCount+1, maxConnectionsPerIP)
			s.Write([]byte(errorMessage))
			s.Close()
			return
		}

		incrementIP(ip)

		log.Info("Connection accepted", "ip", ip, "current_count", getCount(ip), "limit", maxConnectionsPerIP)
		next(s)
		decrementIP(ip)
		log.Info("Connection closed and counter decremented", "ip", ip, "count_after", getCount(ip))
	}
}

func main() {
	log.SetLevel(log.DebugLevel)

	var statsErr error
	statsService, statsErr = game.NewSessionStatsService(game.StatsDBPath)
	if statsErr != nil {
		log.Fatal("Failed to open stats database", "error", statsErr)
	}
	defer statsService.Close()

	sshPKeyPath := os.Getenv("SCREENSAVER_HOST_KEY_PATH")

	sshServer, serverCreateErr := wish.NewServer(
		wish.WithAddress(host+":"+port),
		wish.WithHostKeyPath(sshPKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(viewHandler),
			logging.Middleware(),
			activeterm.Middleware(),
			connectionLimiterMiddleware,
		),
	)

	if serverCreateErr != nil {
		log.Error("Failed to start ssh server", "error", serverCreateErr)
	}
	serverDoneChannel := make(chan os.Signal, 1)
	signal.Notify(serverDoneChannel, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	log.Info("Starting SSH server", "host", host, "port", port)
	go func() {
		if err := sshServer.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Error("Could not start server", "error", err)
			serverDoneChannel <- nil
		}
	}()

	<-serverDoneChannel

	log.Info("Stopping SSH server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer func() { cancel() }()
	if err := sshServer.Shutdown(ctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		log.Error("Could not stop server", "error", err)
	}
}

// viewHandler builds one simulator per SSH session, sized from the client
// pty. Remote sessions skip the trace log; the shared stats store still
// records their resets.
func viewHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sshSession.Pty()

	screenWidth, screenHeight := pty.Window.Width, pty.Window.Height
	if screenWidth <= 0 || screenHeight <= 0 {
		screenWidth, screenHeight = game.DefaultBoardCols, game.DefaultBoardRows
	}

	rows, cols := ui.BoardSizeFor(screenWidth, screenHeight)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	sim, simErr := game.NewSimulator(rows, cols, rng, game.NewNopTraceLog(), statsService)
	if simErr != nil {
		log.Error("Client terminal too small", "ip", getIP(sshSession), "error", simErr)
		wish.Fatalln(sshSession, "Your terminal is too small for the screensaver.")
		return nil, nil
	}
	go sim.StartLoop()

	// A client can vanish without ever sending a quit key (network drop,
	// closed terminal); tie the drive loop to the session lifetime so it
	// never outlives the connection.
	go func() {
		<-sshSession.Context().Done()
		sim.Stop()
	}()

	return ui.NewScreensaverModel(sim, statsService, screenWidth, screenHeight), []tea.ProgramOption{tea.WithAltScreen()}
}
