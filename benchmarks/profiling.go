package benchmarks

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/rs/zerolog/log"
)

// startProfiling starts the cpu profile, the returned func stops it and
// writes the heap profile. Profiles are written outside the save folder,
// which is cleaned on every comparison.
func startProfiling(cpuprofile, memprofile string) (func(), error) {
	var cpuFile *os.File
	if cpuprofile != "" {
		log.Info().Str("file", cpuprofile).Msg("profiling cpu")
		f, err := os.Create(cpuprofile)
		if err != nil {
			return nil, fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not start CPU profile: %w", err)
		}
		cpuFile = f
	}

	return func() {
		if cpuFile != nil {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}
		if memprofile == "" {
			return
		}
		log.Info().Str("file", memprofile).Msg("profiling memory")
		f, err := os.Create(memprofile)
		if err != nil {
			log.Error().Err(err).Msg("could not create memory profile")
			return
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Error().Err(err).Msg("could not write memory profile")
		}
	}, nil
}
