package lightmap

import (
	"context"
	"errors"
	"fmt"
	gomath "math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/brushlight/internal/engine/lighting"
	"github.com/Faultbox/brushlight/internal/engine/picking"
	"github.com/Faultbox/brushlight/pkg/mapobject"
	"github.com/Faultbox/brushlight/pkg/math"
)

// ErrDegenerateFace is reported for a face whose vertices do not span a
// plane at bake precision.
var ErrDegenerateFace = errors.New("degenerate face")

// Progress counts finished face units.
type Progress struct {
	Done, Total int
}

// ProgressSink receives periodic snapshots of an atlas being baked. The
// snapshot belongs to the sink.
type ProgressSink interface {
	Flush(snapshot *Atlas, p Progress) error
}

// Result is the output of a successful bake.
type Result struct {
	Atlas  *Atlas
	Layout *Layout
	Report Report
}

// Baker renders lightmaps. The atlas of the last successful bake stays
// available through Atlas; a failed or cancelled bake leaves it unchanged.
type Baker struct {
	opts  Options
	log   *zap.Logger
	sink  ProgressSink
	atlas atomic.Pointer[Atlas]
}

// NewBaker validates opts and returns a baker. A nil logger disables
// logging.
func NewBaker(opts Options, log *zap.Logger) (*Baker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Baker{opts: opts, log: log}, nil
}

// SetProgressSink sets the receiver of progress snapshots. It must not be
// called during a bake.
func (b *Baker) SetProgressSink(sink ProgressSink) {
	b.sink = sink
}

// Atlas returns the atlas of the last successful bake, or nil.
func (b *Baker) Atlas() *Atlas {
	return b.atlas.Load()
}

// BakeMap extracts the lights of m and bakes it. With StrictLights set any
// invalid light fails the bake; otherwise invalid lights are skipped.
func (b *Baker) BakeMap(ctx context.Context, m *mapobject.Map) (*Result, error) {
	lights, err := lighting.FromEntities(m.Entities)
	rejected := 0
	for i := range m.Entities {
		if m.Entities[i].ClassName == lighting.ClassName {
			rejected++
		}
	}
	rejected -= len(lights)
	if err != nil {
		if b.opts.StrictLights {
			return nil, fmt.Errorf("lightmap: %w", err)
		}
		b.log.Warn("skipping invalid lights", zap.Int("count", rejected), zap.Error(err))
	}

	res, err := b.Bake(ctx, m, lights)
	if err != nil {
		return nil, err
	}
	res.Report.LightsRejected += rejected
	return res, nil
}

type blocker struct {
	id   mapobject.FaceID
	face *picking.Face
}

type unit struct {
	face  *mapobject.Face
	group int // index into Layout.Groups
}

// Bake groups, packs and lights every bakeable face of m. The faces of m
// must not change while Bake runs. On success the faces receive their
// lightmap UVs and the new atlas replaces the current one.
func (b *Baker) Bake(ctx context.Context, m *mapobject.Map, lights []lighting.Light) (*Result, error) {
	start := time.Now()
	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("lightmap: run id: %w", err)
	}
	log := b.log.With(zap.Stringer("run", runID))
	report := Report{RunID: runID}

	for _, l := range lights {
		if l.Range > 0 {
			report.LightsUsed++
		} else {
			report.LightsRejected++
		}
	}
	if report.LightsRejected > 0 {
		valid := make([]lighting.Light, 0, report.LightsUsed)
		for _, l := range lights {
			if l.Range > 0 {
				valid = append(valid, l)
			}
		}
		lights = valid
	}

	faces, excluded := BakeableFaces(m, b.opts)
	report.FacesExcluded = excluded
	groups := GroupFaces(faces, b.opts)
	report.Groups = len(groups)

	layout, err := Pack(groups, b.opts)
	var capErr *CapacityError
	switch {
	case errors.As(err, &capErr):
		report.Overflowed = capErr.Groups
		log.Warn("lightmap atlas capacity exceeded",
			zap.Int("groups", capErr.Groups), zap.Int("atlasSize", capErr.AtlasSize))
	case err != nil:
		return nil, err
	}

	blockers := make([]blocker, 0, len(faces))
	targets := make(map[mapobject.FaceID]*picking.Face, len(faces))
	for _, f := range faces {
		pf, ok := picking.NewFace(toVec32s(f.Vertices()))
		if !ok {
			continue
		}
		targets[f.ID] = &pf
		blockers = append(blockers, blocker{id: f.ID, face: &pf})
	}

	var units []unit
	for gi, g := range layout.Groups {
		for _, f := range g.Faces {
			units = append(units, unit{face: f, group: gi})
		}
	}

	scratch := NewAtlas(b.opts.AtlasSize)
	locks := make([]sync.Mutex, len(layout.Groups))
	var done, failed atomic.Int64
	stopFlush := b.startFlusher(scratch, layout, locks, &done, len(units))

	log.Info("baking lightmap",
		zap.Int("faces", len(units)), zap.Int("groups", len(groups)),
		zap.Int("lights", len(lights)), zap.Int("concurrency", b.opts.Concurrency))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.opts.Concurrency)
	for _, u := range units {
		if egCtx.Err() != nil {
			break
		}
		u := u
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			g := layout.Groups[u.group]
			if err := b.bakeUnit(u.face, g, targets[u.face.ID], lights, blockers, scratch, &locks[u.group]); err != nil {
				failed.Add(1)
				log.Warn("face bake failed", zap.Int("face", int(u.face.ID)), zap.Int("group", g.ID), zap.Error(err))
			}
			done.Add(1)
			return nil
		})
	}
	err = eg.Wait()
	stopFlush()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Info("lightmap bake cancelled", zap.Int64("done", done.Load()), zap.Error(err))
		return nil, err
	}

	if b.sink != nil {
		b.flush(scratch, layout, locks, Progress{Done: len(units), Total: len(units)})
	}
	b.atlas.Store(scratch)
	layout.AssignUVs()

	report.FacesFailed = int(failed.Load())
	report.FacesBaked = len(units) - report.FacesFailed
	report.Duration = time.Since(start)
	log.Info("lightmap bake finished", report.Fields()...)

	return &Result{Atlas: scratch, Layout: layout, Report: report}, nil
}

// bakeUnit renders one face and merges it into the atlas under the lock of
// the face's group. Faces of one group may share boundary luxels; the
// brighter value wins.
func (b *Baker) bakeUnit(f *mapobject.Face, g *Group, target *picking.Face, lights []lighting.Light,
	blockers []blocker, atlas *Atlas, lock *sync.Mutex) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if target == nil {
		return ErrDegenerateFace
	}

	rect, pix, err := b.renderFace(f, g, target, lights, blockers)
	if err != nil {
		return err
	}

	lock.Lock()
	defer lock.Unlock()
	for y := 0; y < rect.H; y++ {
		for x := 0; x < rect.W; x++ {
			i := (y*rect.W + x) * 3
			r, gr, bl := atlas.RGB(rect.X+x, rect.Y+y)
			atlas.SetRGB(rect.X+x, rect.Y+y, max(r, pix[i]), max(gr, pix[i+1]), max(bl, pix[i+2]))
		}
	}
	return nil
}

// renderFace computes the luxels covering the face's footprint in its
// group's rectangle. Each luxel is sampled at its centre, projected onto
// the face plane along the group normal.
func (b *Baker) renderFace(f *mapobject.Face, g *Group, target *picking.Face, lights []lighting.Light,
	blockers []blocker) (Rect, []uint8, error) {
	ds := b.opts.DownscaleFactor

	lo := math.Vec2{X: gomath.Inf(1), Y: gomath.Inf(1)}
	hi := math.Vec2{X: gomath.Inf(-1), Y: gomath.Inf(-1)}
	for _, p := range f.Vertices() {
		uv := math.Vec2{X: g.U.Dot(p), Y: g.V.Dot(p)}
		lo = lo.Min(uv)
		hi = hi.Max(uv)
	}
	x0 := int(gomath.Floor((lo.X - g.Min.X) / ds))
	y0 := int(gomath.Floor((lo.Y - g.Min.Y) / ds))
	x1 := max(int(gomath.Ceil((hi.X-g.Min.X)/ds)), x0+1)
	y1 := max(int(gomath.Ceil((hi.Y-g.Min.Y)/ds)), y0+1)
	rect := Rect{X: g.Rect.X + x0, Y: g.Rect.Y + y0, W: x1 - x0, H: y1 - y0}

	u, v, n := toVec32(g.U), toVec32(g.V), toVec32(g.Plane.Normal)
	denom := target.Normal.Dot(n)
	if math32.Abs(denom) < parallelEpsilon {
		return Rect{}, nil, fmt.Errorf("%w: face %d is perpendicular to its group", ErrDegenerateFace, f.ID)
	}

	// Lights reaching the face box, each with the faces that may shadow it.
	var active []lighting.Light
	var shadows [][]*picking.Face
	for _, l := range lights {
		if !l.Box().Intersects(target.Box) {
			continue
		}
		reach := target.Box.Union(picking.NewAABB(l.Origin))
		var list []*picking.Face
		for _, bl := range blockers {
			if bl.id != f.ID && bl.face.Box.Intersects(reach) {
				list = append(list, bl.face)
			}
		}
		active = append(active, l)
		shadows = append(shadows, list)
	}

	pix := make([]uint8, rect.W*rect.H*3)
	if len(active) == 0 {
		return rect, pix, nil
	}
	selfShadow := float32(b.opts.SelfShadowDistSq)
	for y := 0; y < rect.H; y++ {
		t := float32(g.Min.Y + (float64(y0+y)+0.5)*ds)
		for x := 0; x < rect.W; x++ {
			s := float32(g.Min.X + (float64(x0+x)+0.5)*ds)
			q := u.Mul(s).Add(v.Mul(t))
			q = q.Add(n.Mul((target.D - target.Normal.Dot(q)) / denom))

			var c mgl32.Vec3
			for li, l := range active {
				k := illuminate(q, target.Normal, l, shadows[li], selfShadow)
				if k > 0 {
					c = c.Add(l.Color.Mul(k))
				}
			}
			i := (y*rect.W + x) * 3
			pix[i] = clampChannel(c.X())
			pix[i+1] = clampChannel(c.Y())
			pix[i+2] = clampChannel(c.Z())
		}
	}
	return rect, pix, nil
}

// parallelEpsilon rejects faces nearly perpendicular to their group plane.
const parallelEpsilon = 1e-4

// illuminate returns the fraction of l's colour reaching point p on a face
// with the given normal, or 0 when p faces away, is out of range or is
// shadowed. A blocker that shadows p moves to the front of blockers.
func illuminate(p, normal mgl32.Vec3, l lighting.Light, blockers []*picking.Face, selfShadowDistSq float32) float32 {
	toLight := l.Origin.Sub(p)
	distSq := toLight.LenSqr()
	if distSq >= l.Range*l.Range || distSq == 0 {
		return 0
	}
	dist := math32.Sqrt(distSq)
	dot := normal.Dot(toLight) / dist
	if dot <= 0 {
		return 0
	}
	for i, bl := range blockers {
		hit, ok := bl.IntersectSegment(l.Origin, p)
		if !ok || hit.Sub(p).LenSqr() <= selfShadowDistSq {
			continue
		}
		copy(blockers[1:i+1], blockers[:i])
		blockers[0] = bl
		return 0
	}
	return falloff(dot, dist, l.Range)
}

// falloff is the linear attenuation used for every light.
func falloff(dot, dist, rng float32) float32 {
	return dot * (rng - dist) / rng
}

func clampChannel(v float32) uint8 {
	return uint8(math32.Min(255, math32.Max(0, v)))
}

func (b *Baker) startFlusher(scratch *Atlas, layout *Layout, locks []sync.Mutex, done *atomic.Int64, total int) (stop func()) {
	if b.sink == nil || b.opts.FlushInterval <= 0 {
		return func() {}
	}
	quit := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(b.opts.FlushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				b.flush(scratch, layout, locks, Progress{Done: int(done.Load()), Total: total})
			}
		}
	}()
	return func() {
		close(quit)
		<-finished
	}
}

// flush copies the atlas group by group, each under its group lock, and
// hands the copy to the sink.
func (b *Baker) flush(scratch *Atlas, layout *Layout, locks []sync.Mutex, p Progress) {
	snapshot := NewAtlas(scratch.Size)
	for i, g := range layout.Groups {
		locks[i].Lock()
		snapshot.copyRect(scratch, g.Rect)
		locks[i].Unlock()
	}
	if err := b.sink.Flush(snapshot, p); err != nil {
		b.log.Warn("progress flush failed", zap.Error(err))
	}
}

func toVec32(v math.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func toVec32s(vs []math.Vec3) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(vs))
	for i, v := range vs {
		out[i] = toVec32(v)
	}
	return out
}
