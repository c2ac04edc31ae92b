package cli

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alitto/pond/v2"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/ports"
)

// ReplayStep is the outcome of one recorded frame.
type ReplayStep struct {
	Session     string              `json:"session"`
	File        string              `json:"file"`
	FrameID     uint64              `json:"frame_id"`
	State       string              `json:"state"`
	Instruction *domain.Instruction `json:"instruction,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// ReplayResult gathers the steps of one directory.
type ReplayResult struct {
	Dir   string       `json:"dir"`
	Steps []ReplayStep `json:"steps"`
	Err   error        `json:"-"`
}

// Replay feeds the files of each directory, in name order, to a session of
// its own. Directories are replayed concurrently by at most workers
// goroutines. Results are returned in the order of dirs.
func Replay(ctx context.Context, sessions ports.StreamPort, dirs []string, workers int, logger *slog.Logger) []ReplayResult {
	if workers < 1 {
		workers = 1
	}
	pool := pond.NewResultPool[ReplayResult](workers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, dir := range dirs {
		group.Submit(func() ReplayResult {
			return replayDir(ctx, sessions, dir, logger)
		})
	}

	results, err := group.Wait()
	if err != nil {
		// Only a cancelled context fails the whole group.
		logger.Warn("replay interrupted", "err", err)
	}
	return results
}

func replayDir(ctx context.Context, sessions ports.StreamPort, dir string, logger *slog.Logger) ReplayResult {
	res := ReplayResult{Dir: dir, Steps: []ReplayStep{}}
	sessionID := filepath.Clean(dir)

	files, err := frameFiles(dir)
	if err != nil {
		res.Err = err
		return res
	}
	if _, err := sessions.Create(sessionID); err != nil {
		res.Err = err
		return res
	}

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		data, err := os.ReadFile(path)
		if err != nil {
			res.Err = err
			return res
		}

		frame := domain.Frame{
			ID:          uint64(i + 1),
			Data:        data,
			ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		}
		inst, snap, err := sessions.Feed(ctx, sessionID, frame)

		step := ReplayStep{Session: sessionID, File: filepath.Base(path), FrameID: frame.ID, State: snap.State}
		if err != nil {
			step.Error = err.Error()
			logger.Warn("frame failed", "session_id", sessionID, "file", step.File, "err", err)
		} else if !inst.IsEmpty() {
			step.Instruction = &inst
		}
		res.Steps = append(res.Steps, step)
	}
	return res
}

// frameFiles lists the regular, non-hidden files of dir sorted by name.
func frameFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frames: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
