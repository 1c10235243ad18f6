package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cbegin/wavesynth-go"
	"github.com/cbegin/wavesynth-go/internal/config"
	"github.com/cbegin/wavesynth-go/internal/midi"
)

func main() {
	var (
		midiPath   = flag.String("midi", "", "path to a Standard MIDI File to render")
		waveName   = flag.String("wave", "sine", "waveform to render when -midi is not given")
		freq       = flag.Float64("freq", 440, "waveform frequency in Hz")
		duration   = flag.Float64("duration", 1, "waveform duration in seconds")
		configPath = flag.String("config", "", "path to a YAML render config")
		outPath    = flag.String("o", "out.wav", "output path; .pcm or .raw writes headerless PCM (empty = no file)")
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		bits       = flag.Int("bits", 16, "output bit depth: 8|16|24|32")
		ref        = flag.Float64("ref", 440, "reference pitch of MIDI note 69 in Hz")
		mono       = flag.Bool("mono", false, "last-note priority: one voice at a time")
		normalize  = flag.Bool("normalize", true, "scale output to a peak of 1")
		dump       = flag.Bool("dump", false, "print the parsed MIDI events and exit")
		play       = flag.Bool("play", false, "play the rendered signal after writing it")
		verbose    = flag.Bool("v", false, "debug logging and error stack traces")
	)
	flag.Parse()

	fatal := func(err error) {
		if *verbose {
			log.Fatalf("%+v", err)
		}
		log.Fatal(err)
	}
	if *verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatal(err)
		}
	}
	// Flags given on the command line override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sample-rate":
			cfg.SampleRate = *sampleRate
		case "bits":
			cfg.BitDepth = *bits
		case "ref":
			cfg.ReferencePitch = *ref
		case "mono":
			cfg.Mono = *mono
		case "normalize":
			cfg.Normalize = *normalize
		}
	})
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	var samples []float64
	if strings.TrimSpace(*midiPath) != "" {
		song, err := wavesynth.ReadMIDIFile(*midiPath)
		if err != nil {
			fatal(err)
		}
		if *dump {
			dumpSong(song)
			return
		}
		if samples, err = renderSong(song, cfg); err != nil {
			fatal(err)
		}
	} else {
		gen, err := wavesynth.Waveform(*waveName, *freq)
		if err != nil {
			fatal(err)
		}
		s, err := wavesynth.Render(gen, *duration, cfg.SampleRate)
		if err != nil {
			fatal(err)
		}
		if samples, err = wavesynth.Collect(s); err != nil {
			fatal(err)
		}
	}

	samples, err := wavesynth.NewPipeline(cfg).Process(samples)
	if err != nil {
		fatal(err)
	}
	seconds := float64(len(samples)) / float64(cfg.SampleRate)
	if *outPath != "" {
		write := func() error {
			return wavesynth.WriteWAVFile(*outPath, samples, cfg.SampleRate, cfg.BitDepth)
		}
		switch strings.ToLower(filepath.Ext(*outPath)) {
		case ".pcm", ".raw":
			write = func() error {
				return wavesynth.WritePCMFile(*outPath, samples, cfg.BitDepth)
			}
		}
		if err := write(); err != nil {
			fatal(err)
		}
		fmt.Printf("wrote %s (%d samples, %.2fs, %d-bit)\n", *outPath, len(samples), seconds, cfg.BitDepth)
	}
	if *play {
		pl, err := wavesynth.NewPlayer(cfg.SampleRate)
		if err != nil {
			fatal(err)
		}
		if err := pl.Play(samples); err != nil {
			fatal(err)
		}
		pl.Wait()
		fmt.Println("playback completed")
	}
}

func renderSong(song *wavesynth.Song, cfg config.Config) ([]float64, error) {
	inst, err := wavesynth.NewInstrument(cfg.Instrument, cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	seq, err := wavesynth.RenderMIDI(song, cfg.SampleRate,
		wavesynth.WithInstrument(inst),
		wavesynth.WithMono(cfg.Mono),
		wavesynth.WithReferencePitch(cfg.ReferencePitch),
		wavesynth.WithTracks(cfg.Tracks...),
	)
	if err != nil {
		return nil, err
	}
	return wavesynth.Collect(seq)
}

func dumpSong(song *wavesynth.Song) {
	tempo := midi.NewTempoMap(song)
	fmt.Printf("format %d, %d tracks, %v BPM, %d ticks (%.3fs)\n",
		song.Format, len(song.Tracks), song.BPM, song.MaxTime, tempo.Seconds(song.MaxTime))
	for i, tr := range song.Tracks {
		fmt.Printf("track %d (%d events)\n", i, len(tr.Events))
		for _, ev := range tr.Events {
			fmt.Printf("  %9.3fs %6.1f BPM  %s\n", tempo.Seconds(ev.Time), tempo.BPMAt(ev.Time), ev)
		}
	}
}
