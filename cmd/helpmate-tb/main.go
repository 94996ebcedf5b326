// Command helpmate-tb builds and probes helpmate tablebases: for a given
// material configuration, it enumerates every legal position, labels each
// with its cooperative distance-to-mate via backward induction, and writes
// the result as a compressed, block-indexed table file per (material,
// winner) pair, matching the pattern the teacher's chessplay-uci entrypoint
// uses (flag-parsed config, stdlib log, an optional CPU profile).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kraktus/helpmate-tb/internal/board"
	"github.com/kraktus/helpmate-tb/internal/storage"
	"github.com/kraktus/helpmate-tb/internal/tablebase"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	materialF  = flag.String("material", "", "material key to build, e.g. KQvK")
	outDirF    = flag.String("out", "", "directory holding/receiving table files")
	recursiveF = flag.Bool("recursive", true, "also build every descendant material needed before -material")
	forceF     = flag.Bool("force", false, "rebuild tables even if already marked done")
	probeFEN   = flag.String("probe", "", "instead of building, probe this FEN and print the winning line")
	probeWinF  = flag.String("probe-winner", "white", "side trying to win when -probe is set: white or black")
)

func main() {
	flag.Parse()

	if profilePath := resolveProfilePath(); profilePath != "" {
		stop := startCPUProfile(profilePath)
		defer stop()
	}

	if *materialF == "" {
		log.Fatal("-material is required, e.g. -material=KQvK")
	}
	if *outDirF == "" {
		log.Fatal("-out is required: directory to read/write table files")
	}
	if err := os.MkdirAll(*outDirF, 0755); err != nil {
		log.Fatalf("creating -out directory: %v", err)
	}

	mat, err := tablebase.ParseMaterial(*materialF)
	if err != nil {
		log.Fatalf("parsing -material %q: %v", *materialF, err)
	}

	if *probeFEN != "" {
		runProbe(mat, *outDirF)
		return
	}

	store, err := storage.NewStorage()
	if err != nil {
		log.Fatalf("opening progress database: %v", err)
	}
	defer store.Close()

	materials := []tablebase.Material{mat}
	if *recursiveF {
		materials = append(mat.DescendantsRecursive(true), mat)
	}
	materials = dedupeMaterials(materials)
	sort.Slice(materials, func(i, j int) bool { return materials[i].Count() < materials[j].Count() })

	for _, m := range materials {
		for _, winner := range []board.Color{board.White, board.Black} {
			if err := buildOne(m, winner, *outDirF, store, *forceF); err != nil {
				log.Fatalf("building %v (winner %v): %v", m, winner, err)
			}
		}
	}
	log.Printf("done: %d material configuration(s) processed", len(materials))
}

func resolveProfilePath() string {
	if *cpuprofile != "" {
		return *cpuprofile
	}
	return os.Getenv("CPUPROFILE")
}

func startCPUProfile(path string) func() {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		log.Fatalf("could not start CPU profile: %v", err)
	}
	log.Printf("CPU profiling enabled, writing to %s", path)
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}

func dedupeMaterials(in []tablebase.Material) []tablebase.Material {
	seen := make(map[tablebase.Material]bool, len(in))
	out := make([]tablebase.Material, 0, len(in))
	for _, m := range in {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// buildOne generates and tags one (material, winner) table and writes it to
// tablebaseDir, skipping the work entirely if storage already records it
// done (unless force is set) and if the material is trivially drawn.
func buildOne(mat tablebase.Material, winner board.Color, tablebaseDir string, store *storage.Storage, force bool) error {
	mw := tablebase.MaterialWinner{Material: mat, Winner: winner}
	key := mw.String()

	if mat.IsTriviallyDrawn() {
		log.Printf("%s: trivially drawn, skipping", key)
		return nil
	}

	if !force {
		if p, found, err := store.LoadTableProgress(key); err == nil && found && p.Status == storage.StatusDone {
			log.Printf("%s: already built, skipping", key)
			return nil
		}
	}

	log.Printf("%s: generating", key)
	gen, err := tablebase.NewGenerator(mat, winner, tablebaseDir)
	if err != nil {
		return fmt.Errorf("opening descendant tables: %w", err)
	}
	gen.GeneratePositions()
	common, queue := gen.Result()

	if err := store.SaveTableProgress(storage.TableProgress{
		Key:              key,
		Status:           storage.StatusGenerating,
		PositionsTotal:   uint64(len(common.AllPos)),
		PositionsHandled: uint64(common.Counter),
	}, time.Now()); err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}

	log.Printf("%s: tagging (%s positions)", key, humanize.Comma(int64(len(common.AllPos))))
	if err := store.SaveTableProgress(storage.TableProgress{
		Key:            key,
		Status:         storage.StatusTagging,
		PositionsTotal: uint64(len(common.AllPos)),
	}, time.Now()); err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	tagger := tablebase.NewTagger(common)
	tagger.ProcessPositions(queue)

	log.Printf("%s: writing table", key)
	if err := writeTable(mw, tablebaseDir, common); err != nil {
		store.SaveTableProgress(storage.TableProgress{Key: key, Status: storage.StatusFailed, Err: err.Error()}, time.Now())
		return fmt.Errorf("writing table: %w", err)
	}

	return store.SaveTableProgress(storage.TableProgress{
		Key:              key,
		Status:           storage.StatusDone,
		PositionsTotal:   uint64(len(common.AllPos)),
		PositionsHandled: uint64(len(common.AllPos)),
	}, time.Now())
}

func writeTable(mw tablebase.MaterialWinner, tablebaseDir string, common *tablebase.Common) error {
	path := filepath.Join(tablebaseDir, mw.String())
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	bw := tablebase.NewBlockWriter(f)
	for idx := range common.AllPos {
		pair := common.AllPos[idx]
		if err := bw.Append(tablebase.RawOutcome{
			Black: pair[board.Black].Outcome.Raw(),
			White: pair[board.White].Outcome.Raw(),
		}); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}
	}
	if err := bw.Close(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

func runProbe(mat tablebase.Material, tablebaseDir string) {
	pos, err := board.ParseFEN(*probeFEN)
	if err != nil {
		log.Fatalf("parsing -probe FEN: %v", err)
	}

	var winner board.Color
	switch *probeWinF {
	case "white":
		winner = board.White
	case "black":
		winner = board.Black
	default:
		log.Fatalf("-probe-winner must be white or black, got %q", *probeWinF)
	}

	prober, err := tablebase.NewTablebaseProber(mat, tablebaseDir)
	if err != nil {
		log.Fatalf("opening tablebase at %s: %v", tablebaseDir, err)
	}
	defer prober.Close()

	moves, err := prober.Probe(pos, winner)
	if err != nil {
		log.Fatalf("probe failed: %v", err)
	}

	fmt.Printf("line (%d moves): %s\n", moves.Len(), moves.Slice())
}
