// Package litebrite is a virtual peg board for [Ebitengine].
//
// A board is a fixed grid of cells, each empty or holding a peg of one
// palette color. Pegs are placed with the mouse or touch, or all at once by
// quantizing an uploaded image. Every frame the board is synthesized into
// pixels: a dark perforated background, lit hemispherical pegs and a soft
// pulsing glow that bleeds into neighboring holes.
//
// # Quick start
//
// [Run] opens a window and drives the session for you:
//
//	s, err := litebrite.NewSession(litebrite.Config{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = litebrite.Run(ctx, s, litebrite.RunConfig{Title: "Lite-Brite", ShowHUD: true})
//
// Without a window, render on a CPU backend with a [Loop] and a
// [Presenter] such as [PNGPresenter] or [FramebufferPresenter]:
//
//	s, _ := litebrite.NewSession(litebrite.Config{Backend: litebrite.BackendCPU})
//	_ = s.Start()
//	loop := litebrite.NewLoop(s, &litebrite.PNGPresenter{Dir: "frames"}, 0)
//	_ = loop.Start(ctx)
//	defer loop.Stop()
//
// # Layout
//
// [Layout] places pegs on a square pitch; with stagger enabled odd rows are
// shifted by half a pitch. [Layout.Resolve] maps a canvas position to the
// peg with the nearest center, searching the neighboring rows so points on
// the zig-zag seam between staggered rows land on the closest peg.
//
// # Backends
//
// The lighting model lives in one place, [Synthesizer]. [CPUBackend] runs it
// over row bands on several goroutines, or on one goroutine as the
// sequential fallback; both produce byte-identical images. [KageBackend]
// runs the same model as a Kage fragment shader on the GPU. A session
// prefers the GPU and falls back to the CPU when it is unavailable,
// reporting Supported=false in [Session.Status].
//
// # Logging
//
// The package is silent by default. Enable it with [SetLogger]:
//
//	litebrite.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
//
// [Ebitengine]: https://ebitengine.org
package litebrite
