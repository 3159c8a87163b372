package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/lhyphendixon/sidekick-forge/internal/domain"
)

// stopGracePeriod is how long a worker gets after SIGTERM before SIGKILL.
const stopGracePeriod = 10 * time.Second

// Session describes one running agent worker subprocess.
type Session struct {
	SessionID string
	ClientID  string
	AgentID   string
	RoomName  string
	PID       int
	StartedAt time.Time
}

// SpawnRequest carries everything a worker needs to join its room. The
// credentials travel through the environment, never through argv.
type SpawnRequest struct {
	SessionID   string
	ClientID    string
	AgentID     string
	AgentSlug   string
	RoomName    string
	LiveKitURL  string
	AccessToken string
	Env         map[string]string
}

type runningWorker struct {
	session Session
	cmd     *exec.Cmd
	done    chan struct{}
}

// Manager supervises agent worker subprocesses, one per session. Each worker
// runs in its own process group so a stop signal reaches any children it
// forked.
type Manager struct {
	binary string

	mu      sync.Mutex
	workers map[string]*runningWorker
}

func NewManager(binary string) *Manager {
	return &Manager{
		binary:  binary,
		workers: make(map[string]*runningWorker),
	}
}

// Spawn starts a worker for the session. A session that already has a live
// worker is an error; callers stop the old one first.
func (m *Manager) Spawn(ctx context.Context, req SpawnRequest) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workers[req.SessionID]; ok {
		return nil, fmt.Errorf("worker already running for session %s", req.SessionID)
	}

	cmd := exec.Command(m.binary,
		"--session-id", req.SessionID,
		"--room", req.RoomName,
		"--agent", req.AgentSlug,
	)
	cmd.Env = append(os.Environ(),
		"LIVEKIT_URL="+req.LiveKitURL,
		"LIVEKIT_TOKEN="+req.AccessToken,
		"FORGE_CLIENT_ID="+req.ClientID,
		"FORGE_AGENT_ID="+req.AgentID,
	)
	for k, v := range req.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start worker %s: %w", m.binary, err)
	}

	w := &runningWorker{
		session: Session{
			SessionID: req.SessionID,
			ClientID:  req.ClientID,
			AgentID:   req.AgentID,
			RoomName:  req.RoomName,
			PID:       cmd.Process.Pid,
			StartedAt: time.Now().UTC(),
		},
		cmd:  cmd,
		done: make(chan struct{}),
	}
	m.workers[req.SessionID] = w

	go m.reap(req.SessionID, w)

	log.Printf("Spawned agent worker pid=%d session=%s room=%s", w.session.PID, req.SessionID, req.RoomName)
	session := w.session
	return &session, nil
}

// reap waits for the process and removes the registry entry when it exits,
// whether it was stopped or died on its own.
func (m *Manager) reap(sessionID string, w *runningWorker) {
	err := w.cmd.Wait()
	close(w.done)

	m.mu.Lock()
	if current, ok := m.workers[sessionID]; ok && current == w {
		delete(m.workers, sessionID)
	}
	m.mu.Unlock()

	if err != nil {
		log.Printf("Agent worker pid=%d session=%s exited: %v", w.session.PID, sessionID, err)
		return
	}
	log.Printf("Agent worker pid=%d session=%s exited cleanly", w.session.PID, sessionID)
}

// Stop terminates the worker for a session: SIGTERM to the process group,
// then SIGKILL after the grace period.
func (m *Manager) Stop(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	w, ok := m.workers[sessionID]
	m.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotRunning
	}

	return m.terminate(ctx, w)
}

func (m *Manager) terminate(ctx context.Context, w *runningWorker) error {
	// Negative pid signals the whole process group.
	if err := syscall.Kill(-w.session.PID, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		return fmt.Errorf("failed to signal worker pid=%d: %w", w.session.PID, err)
	}

	select {
	case <-w.done:
		return nil
	case <-time.After(stopGracePeriod):
	case <-ctx.Done():
	}

	if err := syscall.Kill(-w.session.PID, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return fmt.Errorf("failed to kill worker pid=%d: %w", w.session.PID, err)
	}
	<-w.done
	return nil
}

// Get returns the session for a running worker.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[sessionID]
	if !ok {
		return nil, false
	}
	session := w.session
	return &session, true
}

// List returns a snapshot of all running sessions.
func (m *Manager) List() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]Session, 0, len(m.workers))
	for _, w := range m.workers {
		sessions = append(sessions, w.session)
	}
	return sessions
}

// StopAll terminates every running worker, used during shutdown.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.Lock()
	workers := make([]*runningWorker, 0, len(m.workers))
	for _, w := range m.workers {
		workers = append(workers, w)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *runningWorker) {
			defer wg.Done()
			if err := m.terminate(ctx, w); err != nil {
				log.Printf("Error stopping worker session=%s: %v", w.session.SessionID, err)
			}
		}(w)
	}
	wg.Wait()
}
