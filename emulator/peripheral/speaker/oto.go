//go:build oto

/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

package speaker

import (
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	otoSampleRate = 44100
	otoToneHz     = 440
	otoVolume     = 32
)

func init() {
	register("oto", openOto)
}

// otoBackend streams a square wave that is silenced while the tone is off.
type otoBackend struct {
	ctx    *oto.Context
	player *oto.Player

	on          atomic.Bool
	sampleIndex uint64
}

func openOto(func()) (Backend, error) {
	op := &oto.NewContextOptions{
		SampleRate:   otoSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatUnsignedInt8,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	m := &otoBackend{ctx: ctx}
	m.player = ctx.NewPlayer(m)
	m.player.Play()
	return m, nil
}

func (m *otoBackend) Tone(on bool) {
	m.on.Store(on)
}

// Read is called from the audio thread.
func (m *otoBackend) Read(p []byte) (int, error) {
	if !m.on.Load() {
		for i := range p {
			p[i] = 0x80
		}
		return len(p), nil
	}

	const halfSquareWavePeriod = otoSampleRate / otoToneHz / 2
	for i := range p {
		p[i] = 0x80 - otoVolume
		if m.sampleIndex++; (m.sampleIndex/halfSquareWavePeriod)%2 != 0 {
			p[i] = 0x80 + otoVolume
		}
	}
	return len(p), nil
}

func (m *otoBackend) Close() error {
	return m.player.Close()
}
