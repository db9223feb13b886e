// Package initcond builds per-agent initial position/direction pairs from a
// species' configured strategy (§3, §6): none (zero-valued, for a
// caller-supplied snapshot), random, flock, or csv.
package initcond

import (
	"fmt"
	"math"
	"os"

	"github.com/gocarina/gocsv"
	"golang.org/x/exp/rand"

	"github.com/murmuration/engine/config"
	"github.com/murmuration/engine/math3"
)

// Build returns n (pos,dir) pairs for a freshly constructed population,
// per cfg.Type. rng is the strategy's source of randomness (random, flock);
// csv and none ignore it.
func Build(cfg config.InitConditConfig, n int, rng *rand.Rand) ([]math3.Vec3, []math3.Vec3, error) {
	switch cfg.Type {
	case "", "none":
		return make([]math3.Vec3, n), repeatUnit(n), nil
	case "random":
		return buildRandom(cfg.Random, n, rng)
	case "flock":
		return buildFlock(cfg.Flock, n, rng)
	case "csv":
		return buildCSV(cfg.CSV, n)
	default:
		return nil, nil, &config.InitError{Reason: fmt.Sprintf("unknown InitCondit.type %q", cfg.Type)}
	}
}

func repeatUnit(n int) []math3.Vec3 {
	dirs := make([]math3.Vec3, n)
	for i := range dirs {
		dirs[i] = math3.Vec3{X: 1}
	}
	return dirs
}

// buildRandom scatters agents uniformly in a cube of side radius at the
// origin, with a uniformly random unit direction (source's `random`
// strategy).
func buildRandom(cfg *RandomInitConfig, n int, rng *rand.Rand) ([]math3.Vec3, []math3.Vec3, error) {
	if cfg == nil {
		return nil, nil, &config.InitError{Reason: "InitCondit.type random requires a random: block"}
	}
	radius := float32(cfg.Radius)
	pos := make([]math3.Vec3, n)
	dir := make([]math3.Vec3, n)
	for i := 0; i < n; i++ {
		pos[i] = math3.Vec3{
			X: rng.Float32() * radius,
			Y: rng.Float32() * radius,
			Z: rng.Float32() * radius,
		}
		dir[i] = randomUnitVec3(rng)
	}
	return pos, dir, nil
}

// buildFlock scatters agents uniformly in a cube of side radius offset to
// the configured altitude, with direction dir0 perturbed by a normally
// distributed heading deviation (source's `in_flock` strategy).
func buildFlock(cfg *FlockInitConfig, n int, rng *rand.Rand) ([]math3.Vec3, []math3.Vec3, error) {
	if cfg == nil {
		return nil, nil, &config.InitError{Reason: "InitCondit.type flock requires a flock: block"}
	}
	radius := float32(cfg.Radius)
	altitude := float32(cfg.Altitude)
	dir0 := math3.Vec3{X: float32(cfg.Dir0[0]), Y: float32(cfg.Dir0[1]), Z: float32(cfg.Dir0[2])}.Normalize(math3.Vec3{X: 1})
	sigma := float32(cfg.DegDev) * math3.Deg2Rad

	pos := make([]math3.Vec3, n)
	dir := make([]math3.Vec3, n)
	for i := 0; i < n; i++ {
		pos[i] = math3.Vec3{
			X: rng.Float32() * radius,
			Y: rng.Float32()*radius + altitude,
			Z: rng.Float32() * radius,
		}
		angle := sigma * float32(normal(rng))
		dir[i] = math3.RotateAroundY(dir0, angle)
	}
	return pos, dir, nil
}

// randomUnitVec3 draws a uniformly distributed direction on the unit sphere
// via Gaussian-normalize (Marsaglia's method).
func randomUnitVec3(rng *rand.Rand) math3.Vec3 {
	for {
		v := math3.Vec3{
			X: float32(normal(rng)),
			Y: float32(normal(rng)),
			Z: float32(normal(rng)),
		}
		if l := v.Len(); l > 1e-6 {
			return v.Scale(1 / l)
		}
	}
}

// normal draws a standard-normal sample via the Box-Muller transform over
// rng.Float64(), avoiding a dependency on a second distribution type for
// this single use.
func normal(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	if u1 < 1e-12 {
		u1 = 1e-12
	}
	u2 := rng.Float64()
	const twoPi = 6.283185307179586
	r := math.Sqrt(-2 * math.Log(u1))
	return r * math.Cos(twoPi*u2)
}

// preyCSVRow matches the header `id,pos.x,pos.y,pos.z,dir.x,dir.y,dir.z`.
type preyCSVRow struct {
	ID   int     `csv:"id"`
	PosX float32 `csv:"pos.x"`
	PosY float32 `csv:"pos.y"`
	PosZ float32 `csv:"pos.z"`
	DirX float32 `csv:"dir.x"`
	DirY float32 `csv:"dir.y"`
	DirZ float32 `csv:"dir.z"`
}

// predCSVRow matches the header `id,pos.x,pos.y,dir.x,dir.y,dir.z` (no
// pos.z — the source's predator initial conditions are planar).
type predCSVRow struct {
	ID   int     `csv:"id"`
	PosX float32 `csv:"pos.x"`
	PosY float32 `csv:"pos.y"`
	DirX float32 `csv:"dir.x"`
	DirY float32 `csv:"dir.y"`
	DirZ float32 `csv:"dir.z"`
}

// buildCSV reads n rows from cfg.File. The column layout (prey has pos.z,
// predator does not) is detected from the header gocsv parses, by trying
// the prey shape first and falling back to the predator shape — either way
// the header line itself is never treated as data (§6).
func buildCSV(cfg *CSVInitConfig, n int) ([]math3.Vec3, []math3.Vec3, error) {
	if cfg == nil {
		return nil, nil, &config.InitError{Reason: "InitCondit.type csv requires a csv: block"}
	}
	data, err := os.ReadFile(cfg.File)
	if err != nil {
		return nil, nil, fmt.Errorf("reading initial-conditions csv: %w", err)
	}

	var preyRows []*preyCSVRow
	if err := gocsv.UnmarshalBytes(data, &preyRows); err == nil && hasPosZ(data) {
		return rowsToPreyVecs(preyRows, n)
	}

	var predRows []*predCSVRow
	if err := gocsv.UnmarshalBytes(data, &predRows); err != nil {
		return nil, nil, fmt.Errorf("parsing initial-conditions csv: %w", err)
	}
	return rowsToPredVecs(predRows, n)
}

func hasPosZ(data []byte) bool {
	for i, b := range data {
		if b == '\n' {
			return len(data[:i]) > 0 && containsPosZ(data[:i])
		}
	}
	return containsPosZ(data)
}

func containsPosZ(header []byte) bool {
	const needle = "pos.z"
	h := string(header)
	for i := 0; i+len(needle) <= len(h); i++ {
		if h[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func rowsToPreyVecs(rows []*preyCSVRow, n int) ([]math3.Vec3, []math3.Vec3, error) {
	if len(rows) != n {
		return nil, nil, &config.InitError{Reason: fmt.Sprintf("csv has %d rows, want %d", len(rows), n)}
	}
	pos := make([]math3.Vec3, n)
	dir := make([]math3.Vec3, n)
	for i, r := range rows {
		pos[i] = math3.Vec3{X: r.PosX, Y: r.PosY, Z: r.PosZ}
		dir[i] = math3.Vec3{X: r.DirX, Y: r.DirY, Z: r.DirZ}.Normalize(math3.Vec3{X: 1})
	}
	return pos, dir, nil
}

func rowsToPredVecs(rows []*predCSVRow, n int) ([]math3.Vec3, []math3.Vec3, error) {
	if len(rows) != n {
		return nil, nil, &config.InitError{Reason: fmt.Sprintf("csv has %d rows, want %d", len(rows), n)}
	}
	pos := make([]math3.Vec3, n)
	dir := make([]math3.Vec3, n)
	for i, r := range rows {
		pos[i] = math3.Vec3{X: r.PosX, Y: r.PosY, Z: 0}
		dir[i] = math3.Vec3{X: r.DirX, Y: r.DirY, Z: r.DirZ}.Normalize(math3.Vec3{X: 1})
	}
	return pos, dir, nil
}

// Re-exported config aliases keep call sites short (initcond.RandomInitConfig
// instead of config.RandomInitConfig) without duplicating the schema.
type RandomInitConfig = config.RandomInitConfig
type FlockInitConfig = config.FlockInitConfig
type CSVInitConfig = config.CSVInitConfig
