//go:build sdl

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
	"github.com/veandco/go-sdl2/sdl"
)

const (
	frequency       = 48000
	latency         = 10
	toneHz          = 440
	toneVolume      = 32
	framesPerSec    = 60
	maxQueuedFrames = 4
)

func init() {
	register("sdl", openSDL)
}

type sdlBackend struct {
	deviceID sdl.AudioDeviceID
	spec     sdl.AudioSpec

	soundBuffer []byte
	sampleIndex uint64
}

func nextPow(v uint16) uint16 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v++
	return v
}

func openSDL(func()) (Backend, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, err
	}

	want := &sdl.AudioSpec{
		Freq:     frequency,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  nextPow(uint16((frequency / 1000) * latency)),
	}

	m := &sdlBackend{}
	var err error
	if m.deviceID, err = sdl.OpenAudioDevice("", false, want, &m.spec, sdl.AUDIO_ALLOW_FREQUENCY_CHANGE|sdl.AUDIO_ALLOW_CHANNELS_CHANGE); err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, err
	}

	numSamples := int(m.spec.Freq) / framesPerSec
	m.soundBuffer = make([]byte, numSamples*int(m.spec.Channels))
	sdl.PauseAudioDevice(m.deviceID, false)
	return m, nil
}

// Tone queues one frame of square wave while the tone is on. The queue
// drains by itself when it stops.
func (m *sdlBackend) Tone(on bool) {
	if !on {
		m.sampleIndex = 0
		return
	}
	if sdl.GetQueuedAudioSize(m.deviceID) > uint32(len(m.soundBuffer)*maxQueuedFrames) {
		return
	}

	halfSquareWavePeriod := uint64(m.spec.Freq) / toneHz / 2
	channels := int(m.spec.Channels)

	var ptr int
	for i := 0; i < len(m.soundBuffer)/channels; i++ {
		sampleValue := byte(0x80 - toneVolume)
		if m.sampleIndex++; (m.sampleIndex/halfSquareWavePeriod)%2 != 0 {
			sampleValue = 0x80 + toneVolume
		}
		for j := 0; j < channels; j++ {
			m.soundBuffer[ptr] = sampleValue
			ptr++
		}
	}
	sdl.QueueAudio(m.deviceID, m.soundBuffer)
}

func (m *sdlBackend) Close() error {
	sdl.CloseAudioDevice(m.deviceID)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
	return nil
}
