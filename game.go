package litebrite

import (
	"context"
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Game adapts a Session to ebiten.Game: Update processes input and advances
// the glow ramp, Draw renders and presents one frame per display refresh.
type Game struct {
	session *Session
	cfg     RunConfig
	ctx     context.Context
	hud     *HUD
	fps     *fpsWidget
	// frame holds CPU backend output for presentation.
	frame *ebiten.Image
}

// NewGame wraps a started or unstarted session. The HUD and FPS overlay are
// created when enabled in cfg.
func NewGame(ctx context.Context, s *Session, cfg RunConfig) (*Game, error) {
	g := &Game{session: s, cfg: cfg, ctx: ctx}
	if cfg.ShowHUD {
		hud, err := NewHUD()
		if err != nil {
			return nil, err
		}
		g.hud = hud
	}
	if cfg.ShowFPS {
		g.fps = newFPSWidget()
	}
	return g, nil
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if err := g.session.Err(); err != nil && g.cfg.ExitOnError {
		return err
	}
	dt := 1.0 / float64(ebiten.TPS())

	g.session.stepTestRunner()
	g.session.processInput()
	g.session.Advance(dt)
	if g.fps != nil {
		g.fps.update(dt)
	}
	if g.cfg.ExitWhenScriptDone && g.session.scriptDone() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game. Frames that cannot be rendered yet are
// skipped without error.
func (g *Game) Draw(screen *ebiten.Image) {
	s := g.session
	if err := s.Render(time.Now()); err != nil {
		if !errors.Is(err, ErrNotStarted) {
			Logger().Warn("frame skipped", "err", err)
		}
	}

	switch b := s.Backend().(type) {
	case TargetBackend:
		screen.DrawImage(b.Target(), nil)
		s.flushTargetScreenshots(b.Target())
	case ImageBackend:
		img := b.Image()
		if g.frame == nil || g.frame.Bounds() != img.Bounds() {
			g.frame = ebiten.NewImage(img.Bounds().Dx(), img.Bounds().Dy())
		}
		g.frame.WritePixels(img.Pix)
		screen.DrawImage(g.frame, nil)
		s.flushScreenshots(img)
	}

	if g.hud != nil {
		g.hud.Draw(screen, s)
	}
	if g.fps != nil {
		g.fps.draw(screen)
	}
}

// Layout implements ebiten.Game. The logical screen is the session's
// output size, so cursor positions arrive in output pixels.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.session.Size()
}

// scriptDone reports whether an attached test runner has finished.
func (s *Session) scriptDone() bool {
	s.mu.Lock()
	r := s.testRunner
	s.mu.Unlock()
	return r != nil && r.Done()
}
