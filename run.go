package litebrite

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig holds window settings for Run.
type RunConfig struct {
	// Title is the window title. Default "litebrite".
	Title string
	// Width and Height are the initial window size. Zero means the session
	// output size.
	Width, Height int
	// ShowFPS draws an FPS/TPS overlay.
	ShowFPS bool
	// ShowHUD draws the draw color and backend status.
	ShowHUD bool
	// ExitOnError stops the loop when the session records a terminal error.
	ExitOnError bool
	// ExitWhenScriptDone stops the loop once an attached test script ends.
	ExitWhenScriptDone bool
}

// Run starts the session if needed, opens a window and blocks until the
// window is closed or ctx is cancelled. The session is closed on return.
func Run(ctx context.Context, s *Session, cfg RunConfig) error {
	if cfg.Title == "" {
		cfg.Title = "litebrite"
	}
	w, h := s.Size()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = w, h
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if s.Backend() == nil {
		if err := s.Start(); err != nil {
			return err
		}
	}
	defer s.Close()

	game, err := NewGame(ctx, s, cfg)
	if err != nil {
		return err
	}
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("litebrite: run: %w", err)
	}
	return nil
}
