//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const (
	sampleRate = beep.SampleRate(44100)
	toneLength = 120 * time.Millisecond
)

type SoundManager struct {
	buffers map[string]*beep.Buffer
	dir     string
	enabled bool
}

// NewSoundManager dir 为自定义音效目录，可为空
func NewSoundManager(dir string) *SoundManager {
	return &SoundManager{
		buffers: make(map[string]*beep.Buffer),
		dir:     dir,
	}
}

func (sm *SoundManager) Init() error {
	// Init speaker with smaller buffer for lower latency
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	sm.enabled = true

	for name, freq := range cueTones {
		if err := sm.synthesize(name, freq); err != nil {
			return err
		}
	}

	if sm.dir == "" {
		return nil
	}
	return sm.loadSoundFiles(sm.dir)
}

// synthesize 生成一段短正弦提示音
func (sm *SoundManager) synthesize(name string, freq float64) error {
	tone, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return fmt.Errorf("synthesize %s: %w", name, err)
	}
	buffer := beep.NewBuffer(standardFormat())
	buffer.Append(beep.Take(sampleRate.N(toneLength), tone))
	sm.buffers[name] = buffer
	return nil
}

// loadSoundFiles 加载目录中的 mp3/wav 文件，覆盖同名内置音
func (sm *SoundManager) loadSoundFiles(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if ext != ".mp3" && ext != ".wav" {
			continue
		}
		// 单个文件失败不影响其他文件
		_ = sm.loadSoundFile(filepath.Join(dir, file.Name()), ext)
	}
	return nil
}

func (sm *SoundManager) loadSoundFile(path, ext string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(standardFormat())
	buffer.Append(resampled)

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sm.buffers[name] = buffer
	return nil
}

func standardFormat() beep.Format {
	return beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 4}
}

func (sm *SoundManager) Play(name string) {
	if !sm.enabled {
		return
	}
	buffer, ok := sm.buffers[name]
	if !ok {
		return
	}
	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

func (sm *SoundManager) Close() {
	sm.enabled = false
}
