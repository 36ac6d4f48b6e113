package graphics

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// AudioStream adapts the APU's mono int16 sample stream to the
// interleaved-stereo io.Reader that ebiten/v2/audio's player expects.
// Samples are pushed once per RunFrame and drained by the player's own
// goroutine; an empty queue reads as silence rather than blocking.
type AudioStream struct {
	mu  sync.Mutex
	buf []byte
}

func (s *AudioStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// PushMono appends mono 16-bit PCM samples, duplicated to both channels.
func (s *AudioStream) PushMono(samples []int16) {
	if len(samples) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range samples {
		lo, hi := byte(v), byte(v>>8)
		s.buf = append(s.buf, lo, hi, lo, hi)
	}
	// Cap the backlog so a slow player can't grow this without bound.
	const maxBacklog = 4 * 44100 / 10 // ~100ms of stereo 16-bit audio
	if len(s.buf) > maxBacklog {
		s.buf = s.buf[len(s.buf)-maxBacklog:]
	}
}

// NewAudioPlayer starts an ebiten audio player reading from a fresh
// AudioStream at sampleRate; the caller feeds the stream via PushMono.
func NewAudioPlayer(sampleRate int) (*AudioStream, *audio.Player, error) {
	stream := &AudioStream{}
	ctx := audio.NewContext(sampleRate)
	player, err := ctx.NewPlayer(stream)
	if err != nil {
		return nil, nil, err
	}
	player.Play()
	return stream, player, nil
}
