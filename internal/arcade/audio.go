package arcade

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/rs/zerolog"

	"github.com/tankfield/tanks/internal/game"
)

const sampleRate = 44100

// tone describes a synthesized sound effect.
type tone struct {
	seconds float64
	freq    float64 // Hz of the tonal part, 0 for none
	noise   float64 // 0..1 share of white noise
	decay   float64 // exponential decay rate per second
	sweep   float64 // frequency multiplier reached at the end
	gain    float64
}

var effects = map[game.EventKind]tone{
	game.EventShot:           {seconds: 0.14, freq: 110, noise: 0.7, decay: 28, sweep: 0.6, gain: 0.55},
	game.EventBulletExploded: {seconds: 0.35, freq: 60, noise: 0.85, decay: 11, sweep: 0.5, gain: 0.6},
	game.EventTankHit:        {seconds: 0.09, freq: 220, noise: 0.2, decay: 30, sweep: 1, gain: 0.35},
	game.EventTankDestroyed:  {seconds: 0.9, freq: 45, noise: 0.9, decay: 4, sweep: 0.4, gain: 0.8},
	game.EventMatchOver:      {seconds: 0.8, freq: 440, noise: 0, decay: 2.5, sweep: 0.5, gain: 0.3},
}

// synthesize renders t as mono float samples in [-1, 1]. Noise is drawn from
// a fixed seed so every run sounds identical.
func synthesize(t tone, seed int64) []float64 {
	n := int(t.seconds * sampleRate)
	out := make([]float64, n)
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- audio noise
	phase := 0.0
	lp := 0.0
	for i := range out {
		at := float64(i) / sampleRate
		progress := float64(i) / float64(n)
		freq := t.freq * (1 + (t.sweep-1)*progress)
		phase += 2 * math.Pi * freq / sampleRate
		sq := 1.0
		if math.Sin(phase) < 0 {
			sq = -1
		}
		// One-pole low pass keeps the noise from hissing.
		lp += 0.25 * (rng.Float64()*2 - 1 - lp)
		v := (1-t.noise)*sq*0.5 + t.noise*lp*2
		env := math.Exp(-t.decay * at)
		out[i] = clampSample(v * env * t.gain)
	}
	return out
}

func clampSample(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// encodeStereo16 converts mono samples to signed 16-bit little-endian stereo,
// the format audio.Context players expect.
func encodeStereo16(samples []float64) []byte {
	buf := make([]byte, len(samples)*4)
	for i, s := range samples {
		v := uint16(int16(s * math.MaxInt16))
		binary.LittleEndian.PutUint16(buf[i*4:], v)
		binary.LittleEndian.PutUint16(buf[i*4+2:], v)
	}
	return buf
}

// Sounds plays one effect per simulation event. It is an EventSink.
type Sounds struct {
	players map[game.EventKind]*audio.Player
	muted   bool
	log     zerolog.Logger
}

// NewSounds prepares a player for every effect. A nil context gives a
// silent sink.
func NewSounds(ctx *audio.Context, volume float64, muted bool, log zerolog.Logger) *Sounds {
	s := &Sounds{players: make(map[game.EventKind]*audio.Player), muted: muted, log: log}
	if ctx == nil {
		return s
	}
	for kind, t := range effects {
		p := ctx.NewPlayerFromBytes(encodeStereo16(synthesize(t, int64(kind)+1)))
		p.SetVolume(volume)
		s.players[kind] = p
	}
	return s
}

func (s *Sounds) Handle(ev game.Event) {
	if s.muted {
		return
	}
	p, ok := s.players[ev.Kind]
	if !ok {
		return
	}
	if err := p.Rewind(); err != nil {
		s.log.Warn().Err(err).Stringer("event", ev.Kind).Msg("rewind failed")
		return
	}
	p.Play()
}

// SetMuted toggles playback.
func (s *Sounds) SetMuted(m bool) { s.muted = m }

// Muted reports whether playback is off.
func (s *Sounds) Muted() bool { return s.muted }

// Close releases every player.
func (s *Sounds) Close() error {
	var first error
	for kind, p := range s.players {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
		delete(s.players, kind)
	}
	return first
}
