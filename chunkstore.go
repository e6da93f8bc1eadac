package darkmatter

import "math"

// Defaults used when a scene descriptor does not override them.
const (
	DefaultChunkSize     = 512
	DefaultPreloadRadius = 1
)

// chunkKey packs two 32-bit chunk-origin coordinates into one 64-bit map
// key. Faster to hash than a string key and trivially unpacked on eviction
// scans.
type chunkKey uint64

func packChunkKey(cx, cy int) chunkKey {
	return chunkKey(uint64(uint32(int32(cx)))<<32 | uint64(uint32(int32(cy))))
}

func (k chunkKey) unpack() (cx, cy int) {
	return int(int32(uint32(k >> 32))), int(int32(uint32(k)))
}

// DecalChunkStore partitions the unbounded world plane into fixed-size
// square chunks and streams them around the viewport: chunks near the view
// are created eagerly, chunks far from it are evicted wholesale. Decals are
// ephemeral world decoration; eviction discards them, which is what bounds
// memory.
type DecalChunkStore struct {
	// FadeInMs, when positive, fades freshly created chunks in over this
	// many milliseconds.
	FadeInMs float64

	size   int
	sizeF  float64
	chunks map[chunkKey]*DecalChunk

	// canvasFactory, when set, gives each chunk a persistent offscreen
	// canvas so decals are composited once instead of replayed per frame.
	canvasFactory func(w, h int) Surface
}

// NewDecalChunkStore creates a store with the given chunk size in world
// units. Sizes below 1 fall back to DefaultChunkSize.
func NewDecalChunkStore(chunkSize int) *DecalChunkStore {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &DecalChunkStore{
		size:   chunkSize,
		sizeF:  float64(chunkSize),
		chunks: make(map[chunkKey]*DecalChunk),
	}
}

// SetCanvasFactory installs the offscreen-canvas constructor chunks draw
// into. Pass nil to disable canvases; chunks then replay their decal lists
// each frame.
func (s *DecalChunkStore) SetCanvasFactory(f func(w, h int) Surface) {
	s.canvasFactory = f
}

// ChunkSize returns the chunk edge length in world units.
func (s *DecalChunkStore) ChunkSize() int {
	return s.size
}

// chunkOrigin floors a world coordinate to its chunk origin, a multiple of
// the chunk size.
func (s *DecalChunkStore) chunkOrigin(w float64) int {
	return int(math.Floor(w/s.sizeF)) * s.size
}

// GetChunk returns the chunk containing the world position, or nil if it
// does not exist.
func (s *DecalChunkStore) GetChunk(worldX, worldY float64) *DecalChunk {
	return s.chunks[packChunkKey(s.chunkOrigin(worldX), s.chunkOrigin(worldY))]
}

// ensureChunk returns the chunk with the given origin, creating it if
// missing.
func (s *DecalChunkStore) ensureChunk(cx, cy int) *DecalChunk {
	key := packChunkKey(cx, cy)
	if c, ok := s.chunks[key]; ok {
		return c
	}
	c := &DecalChunk{
		ChunkX: cx,
		ChunkY: cy,
		size:   s.sizeF,
		fadeIn: s.FadeInMs,
	}
	if s.canvasFactory != nil {
		c.canvas = s.canvasFactory(s.size, s.size)
	}
	s.chunks[key] = c
	return c
}

// AddDecal stores a decal at the given world position, resolving or creating
// its owning chunk and converting to chunk-local coordinates. Returns the
// owning chunk.
func (s *DecalChunkStore) AddDecal(worldX, worldY float64, drawable Drawable, opts DecalOptions) *DecalChunk {
	cx := s.chunkOrigin(worldX)
	cy := s.chunkOrigin(worldY)
	chunk := s.ensureChunk(cx, cy)
	s.placeInChunk(chunk, worldX, worldY, drawable, opts)
	return chunk
}

// AddDecalToChunk stores a decal in an explicitly chosen chunk, converting
// the world position to that chunk's local space. A position outside the
// chunk's bounds is accepted but logged as a diagnostic; placement is never
// clamped and the decal is never reassigned.
func (s *DecalChunkStore) AddDecalToChunk(chunk *DecalChunk, worldX, worldY float64, drawable Drawable, opts DecalOptions) {
	s.placeInChunk(chunk, worldX, worldY, drawable, opts)
}

func (s *DecalChunkStore) placeInChunk(chunk *DecalChunk, worldX, worldY float64, drawable Drawable, opts DecalOptions) {
	localX := worldX - float64(chunk.ChunkX)
	localY := worldY - float64(chunk.ChunkY)
	if localX < 0 || localX >= s.sizeF || localY < 0 || localY >= s.sizeF {
		warnDecalOutOfBounds(chunk, localX, localY, s.sizeF)
	}
	chunk.addDecal(Decal{
		X:        localX,
		Y:        localY,
		Drawable: drawable,
		Options:  opts.withDefaults(),
	})
}

// Preload eagerly creates empty chunks for every chunk coordinate
// intersecting the viewport's visible world rectangle expanded by
// bufferRadius chunks on all sides, then evicts every chunk outside that
// rectangle expanded by twice the buffer. Eviction discards the chunk's
// decals entirely.
func (s *DecalChunkStore) Preload(v *Viewport, bufferRadius int) {
	if bufferRadius < 0 {
		bufferRadius = 0
	}
	visible := v.VisibleRect()
	buffer := float64(bufferRadius) * s.sizeF

	loadRect := visible.Expand(buffer)
	minCX := s.chunkOrigin(loadRect.X)
	maxCX := s.chunkOrigin(loadRect.X + loadRect.Width)
	minCY := s.chunkOrigin(loadRect.Y)
	maxCY := s.chunkOrigin(loadRect.Y + loadRect.Height)
	for cy := minCY; cy <= maxCY; cy += s.size {
		for cx := minCX; cx <= maxCX; cx += s.size {
			s.ensureChunk(cx, cy)
		}
	}

	evictRect := visible.Expand(2 * buffer)
	for key, c := range s.chunks {
		if !c.Bounds().Intersects(evictRect) {
			delete(s.chunks, key)
		}
	}
}

// Update gives every existing chunk the current delta time to advance its
// fade/aging state. Chunks are never evicted here; only Preload evicts.
func (s *DecalChunkStore) Update(dt float64) {
	for _, c := range s.chunks {
		c.update(dt)
	}
}

// Draw composites every chunk visible in the viewport onto target, whose
// current transform must be the view matrix. Returns the number of chunks
// drawn.
func (s *DecalChunkStore) Draw(target Surface, v *Viewport) int {
	drawn := 0
	for _, c := range s.chunks {
		if !c.IsVisible(v) {
			continue
		}
		c.draw(target)
		drawn++
	}
	return drawn
}

// ClearDecals discards every chunk and its decals.
func (s *DecalChunkStore) ClearDecals() {
	s.chunks = make(map[chunkKey]*DecalChunk)
}

// ClearDecalsAt discards the chunk containing the given world position.
// No-op if the chunk does not exist.
func (s *DecalChunkStore) ClearDecalsAt(worldX, worldY float64) {
	delete(s.chunks, packChunkKey(s.chunkOrigin(worldX), s.chunkOrigin(worldY)))
}

// ChunkCount returns the number of live chunks.
func (s *DecalChunkStore) ChunkCount() int {
	return len(s.chunks)
}

// EachChunk calls fn for every live chunk, in map order.
func (s *DecalChunkStore) EachChunk(fn func(*DecalChunk)) {
	for _, c := range s.chunks {
		fn(c)
	}
}
