package loader

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/citymesh/groundgen/internal/physics"
)

// fakeWorld records collider construction and can be told to fail.
type fakeWorld struct {
	heightfields    []physics.HeightfieldDesc
	boxes           []physics.BoxDesc
	failHeightfield bool
	failBoxes       map[int]bool // indices of AddBox calls that fail
	boxCalls        int
	nextID          physics.ColliderID
}

func (w *fakeWorld) AddHeightfield(desc physics.HeightfieldDesc) (physics.ColliderID, error) {
	if w.failHeightfield {
		return 0, errors.New("engine rejected heightfield")
	}
	w.heightfields = append(w.heightfields, desc)
	w.nextID++
	return w.nextID, nil
}

func (w *fakeWorld) AddBox(desc physics.BoxDesc) (physics.ColliderID, error) {
	call := w.boxCalls
	w.boxCalls++
	if w.failBoxes[call] {
		return 0, errors.New("engine rejected box")
	}
	w.boxes = append(w.boxes, desc)
	w.nextID++
	return w.nextID, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validHeightfield = `{
	"nx": 3, "ny": 2, "width": 20, "depth": 10,
	"minHeight": 0, "maxHeight": 5,
	"heights": [0, 1, 2, 3, 4, 5]
}`

func TestLoadHeightfield_Valid(t *testing.T) {
	world := &fakeWorld{}
	path := writeFile(t, "heightfield.json", validHeightfield)

	res := LoadHeightfield(world, path, DefaultHeightfieldOptions(), nil)
	if res.Fallback {
		t.Fatal("valid file should not fall back")
	}
	if res.Corrections != 0 {
		t.Errorf("expected no corrections, got %d", res.Corrections)
	}
	if len(world.heightfields) != 1 {
		t.Fatalf("expected 1 heightfield collider, got %d", len(world.heightfields))
	}

	desc := world.heightfields[0]
	if desc.Cols != 3 || desc.Rows != 2 {
		t.Errorf("desc dimensions wrong: %dx%d", desc.Cols, desc.Rows)
	}
	if desc.SpacingX != 10 || desc.SpacingZ != 10 {
		t.Errorf("desc spacing wrong: %f %f", desc.SpacingX, desc.SpacingZ)
	}
	if desc.MinHeight != 0 || desc.MaxHeight != 5 {
		t.Errorf("desc range wrong: %f %f", desc.MinHeight, desc.MaxHeight)
	}
}

func TestLoadHeightfield_ShapeMismatchFallsBack(t *testing.T) {
	world := &fakeWorld{}
	path := writeFile(t, "bad.json", `{"nx":4,"ny":4,"width":10,"depth":10,"heights":[0,1,2]}`)

	res := LoadHeightfield(world, path, DefaultHeightfieldOptions(), nil)
	if !res.Fallback {
		t.Fatal("shape mismatch must fall back to flat ground")
	}
	if len(world.heightfields) != 0 {
		t.Error("no heightfield collider should be constructed")
	}
	if len(world.boxes) != 1 {
		t.Fatalf("expected 1 fallback box, got %d", len(world.boxes))
	}
	if top := world.boxes[0].Center[1] + world.boxes[0].Size[1]/2; top != 0 {
		t.Errorf("fallback top face should sit at y=0, got %f", top)
	}
}

func TestLoadHeightfield_MissingFileFallsBack(t *testing.T) {
	world := &fakeWorld{}
	res := LoadHeightfield(world, filepath.Join(t.TempDir(), "absent.json"), DefaultHeightfieldOptions(), nil)
	if !res.Fallback || len(world.boxes) != 1 {
		t.Error("missing file must fall back to flat ground")
	}
}

func TestLoadHeightfield_MalformedJSONFallsBack(t *testing.T) {
	world := &fakeWorld{}
	path := writeFile(t, "garbage.json", `{"nx": "three"`)
	if res := LoadHeightfield(world, path, DefaultHeightfieldOptions(), nil); !res.Fallback {
		t.Error("malformed JSON must fall back")
	}
}

func TestLoadHeightfield_NonIntegralDimensionsFallBack(t *testing.T) {
	world := &fakeWorld{}
	path := writeFile(t, "frac.json", `{"nx":2.5,"ny":4,"width":10,"depth":10,"heights":[0,0,0,0,0,0,0,0,0,0]}`)
	if res := LoadHeightfield(world, path, DefaultHeightfieldOptions(), nil); !res.Fallback {
		t.Error("fractional dimensions must fall back")
	}

	path = writeFile(t, "small.json", `{"nx":1,"ny":4,"width":10,"depth":10,"heights":[0,0,0,0]}`)
	if res := LoadHeightfield(world, path, DefaultHeightfieldOptions(), nil); !res.Fallback {
		t.Error("dimensions below 2 must fall back")
	}
}

func TestLoadHeightfield_BadExtentFallsBack(t *testing.T) {
	world := &fakeWorld{}
	path := writeFile(t, "extent.json", `{"nx":2,"ny":2,"width":0,"depth":10,"heights":[0,0,0,0]}`)
	if res := LoadHeightfield(world, path, DefaultHeightfieldOptions(), nil); !res.Fallback {
		t.Error("zero width must fall back")
	}
}

func TestLoadHeightfield_ClampsOutOfRange(t *testing.T) {
	world := &fakeWorld{}
	path := writeFile(t, "wild.json", `{
		"nx": 2, "ny": 2, "width": 10, "depth": 10,
		"heights": [5000, -5000, 1, 2]
	}`)

	res := LoadHeightfield(world, path, DefaultHeightfieldOptions(), nil)
	if res.Fallback {
		t.Fatal("out-of-range heights are corrected, not fatal")
	}
	if res.Corrections != 2 {
		t.Errorf("expected 2 corrections, got %d", res.Corrections)
	}

	for _, h := range world.heightfields[0].Heights {
		if h > 1000 || h < -1000 {
			t.Errorf("height %f escaped clamping", h)
		}
	}
}

func TestLoadHeightfield_EngineFailureFallsBack(t *testing.T) {
	world := &fakeWorld{failHeightfield: true}
	path := writeFile(t, "heightfield.json", validHeightfield)

	res := LoadHeightfield(world, path, DefaultHeightfieldOptions(), nil)
	if !res.Fallback {
		t.Fatal("engine failure must fall back")
	}
	if len(world.boxes) != 1 {
		t.Errorf("expected fallback box, got %d boxes", len(world.boxes))
	}
}

func TestLoadHeightfield_FallbackFailureDoesNotPanic(t *testing.T) {
	world := &fakeWorld{failHeightfield: true, failBoxes: map[int]bool{0: true}}
	path := writeFile(t, "heightfield.json", validHeightfield)

	res := LoadHeightfield(world, path, DefaultHeightfieldOptions(), nil)
	if !res.Fallback {
		t.Error("result should still report fallback")
	}
	if res.ID != 0 {
		t.Errorf("expected zero collider id, got %d", res.ID)
	}
}

func TestSanitizeHeights(t *testing.T) {
	heights := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1500, -1500, 3}
	n := sanitizeHeights(heights, 1000)
	if n != 5 {
		t.Errorf("expected 5 corrections, got %d", n)
	}

	want := []float64{0, 0, 0, 1000, -1000, 3}
	for i, h := range heights {
		if h != want[i] {
			t.Errorf("index %d: expected %f, got %f", i, want[i], h)
		}
	}
}

func TestLoadBuildings_Batch(t *testing.T) {
	world := &fakeWorld{}
	path := writeFile(t, "buildings.json", `[
		{"building":"building_000","type":"box","center":[1,2,3],"size":[4,5,6],"rotation":[0,0,0]},
		{"building":"building_001","type":"box","center":[10,2,3],"size":[4,5,6],"rotation":[0,0.5,0]}
	]`)

	res := LoadBuildings(world, path, nil)
	if len(res.IDs) != 2 || res.Failed != 0 {
		t.Fatalf("expected 2 colliders, got %d (failed %d)", len(res.IDs), res.Failed)
	}

	if world.boxes[0].Center != [3]float64{1, 2, 3} {
		t.Errorf("box center wrong: %v", world.boxes[0].Center)
	}
	if world.boxes[1].Rotation != [3]float64{0, 0.5, 0} {
		t.Errorf("box rotation wrong: %v", world.boxes[1].Rotation)
	}
}

func TestLoadBuildings_EntryFailureContinuesBatch(t *testing.T) {
	world := &fakeWorld{failBoxes: map[int]bool{1: true}}
	path := writeFile(t, "buildings.json", `[
		{"type":"box","center":[0,0,0],"size":[1,1,1],"rotation":[0,0,0]},
		{"type":"box","center":[0,0,0],"size":[-1,0,0],"rotation":[0,0,0]},
		{"type":"box","center":[9,0,0],"size":[1,1,1],"rotation":[0,0,0]}
	]`)

	res := LoadBuildings(world, path, nil)
	if res.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", res.Failed)
	}
	if len(res.IDs) != 2 {
		t.Errorf("expected remaining 2 colliders, got %d", len(res.IDs))
	}
}

func TestLoadBuildings_MissingFile(t *testing.T) {
	world := &fakeWorld{}
	res := LoadBuildings(world, filepath.Join(t.TempDir(), "absent.json"), nil)
	if len(res.IDs) != 0 || world.boxCalls != 0 {
		t.Error("missing file should load nothing")
	}
}
