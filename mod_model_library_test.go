package lightlab

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoader serves a two-mesh model per name, or fails for names starting with "broken".
type fakeLoader struct {
	loads []string
}

func (l *fakeLoader) Load(assets *AssetServer, path string) (*ModelData, error) {
	name := strings.TrimSuffix(filepath.Base(path), ".glb")
	l.loads = append(l.loads, name)
	if strings.HasPrefix(name, "broken") {
		return nil, errors.New("corrupt file")
	}
	shared := NewStandardMaterial(0xcccccc, 0.5, 0)
	shared.Name = name
	return &ModelData{Nodes: []ModelNode{
		{Name: "a", Parent: -1, Local: NewTransform(mgl32.Vec3{}), Primitives: []ModelPrimitive{
			{Mesh: assets.CreateBoxMesh(1, 1, 1), Material: shared},
			{Mesh: assets.CreatePlaneMesh(1, 1), Material: shared},
		}},
	}}, nil
}

func modelMaterials(cmd *Commands, root EntityId) []*Material {
	var out []*Material
	for _, eid := range Descendants(cmd, root) {
		if mesh := GetComponent[MeshComponent](cmd, eid); mesh != nil {
			out = append(out, mesh.Material)
		}
	}
	return out
}

func TestModelLibraryModuleLoadsInitial(t *testing.T) {
	loader := &fakeLoader{}
	app := newTestApp(AssetServerModule{}, HierarchyModule{}, ModelLibraryModule{
		Dir:    "models",
		Models: []string{"bunny", "teapot"},
		Loader: loader,
	})
	lib := Resource[ModelLibrary](app)
	require.NotNil(t, lib)

	assert.Equal(t, []string{"bunny"}, loader.loads)
	assert.Equal(t, "bunny", lib.CurrentName())
	assert.Equal(t, filepath.Join("models", "teapot.glb"), lib.Path("teapot"))

	root, ok := lib.Current()
	require.True(t, ok)
	assert.True(t, app.Commands().Alive(root))
	assert.Len(t, modelMaterials(app.Commands(), root), 2)
}

func TestModelLibrarySwapDisposesPrevious(t *testing.T) {
	app := newTestApp(AssetServerModule{}, HierarchyModule{}, ModelLibraryModule{
		Models: []string{"bunny", "teapot"},
		Loader: &fakeLoader{},
	})
	cmd := app.Commands()
	lib := Resource[ModelLibrary](app)
	assets := Resource[AssetServer](app)
	oldRoot, _ := lib.Current()
	oldMat := modelMaterials(cmd, oldRoot)[0]
	oldEntities := Descendants(cmd, oldRoot)

	var unloaded []EntityId
	lib.OnUnload(func(root EntityId) { unloaded = append(unloaded, root) })

	require.NoError(t, lib.Swap(cmd, assets, "teapot"))
	app.FlushCommands()

	assert.Equal(t, []EntityId{oldRoot}, unloaded)
	assert.True(t, oldMat.Disposed())
	for _, eid := range oldEntities {
		assert.False(t, cmd.Alive(eid))
	}
	assert.Equal(t, 2, assets.MeshCount())

	newRoot, ok := lib.Current()
	require.True(t, ok)
	assert.NotEqual(t, oldRoot, newRoot)
	assert.Equal(t, "teapot", modelMaterials(cmd, newRoot)[0].Name)
}

func TestModelLibrarySwapFailureLeavesEmptyScene(t *testing.T) {
	logger := &recordingLogger{}
	app := newTestApp(loggerModule{logger}, AssetServerModule{}, HierarchyModule{}, ModelLibraryModule{
		Models: []string{"bunny", "broken"},
		Loader: &fakeLoader{},
	})
	cmd := app.Commands()
	lib := Resource[ModelLibrary](app)

	err := lib.Swap(cmd, Resource[AssetServer](app), "broken")
	assert.ErrorContains(t, err, "corrupt file")
	_, ok := lib.Current()
	assert.False(t, ok)
	assert.Empty(t, lib.CurrentName())
	assert.Contains(t, strings.Join(logger.Lines(), "\n"), "ERROR: Failed to load model broken")
}

func TestModelLibraryLoadedHookFiresOnce(t *testing.T) {
	app := newTestApp(AssetServerModule{}, HierarchyModule{}, ModelLibraryModule{
		Models: []string{"bunny"},
		Loader: &fakeLoader{},
	})
	lib := Resource[ModelLibrary](app)
	var loaded []EntityId
	lib.OnLoaded(func(root EntityId) { loaded = append(loaded, root) })

	app.Step()
	app.Step()

	root, _ := lib.Current()
	assert.Equal(t, []EntityId{root}, loaded)
}

func TestModelLibraryPanelChoice(t *testing.T) {
	app := newTestApp(PanelModule{Title: "Sandbox"}, AssetServerModule{}, HierarchyModule{}, ModelLibraryModule{
		Models: []string{"bunny", "teapot"},
		Loader: &fakeLoader{},
	})
	lib := Resource[ModelLibrary](app)
	panel := Resource[Panel](app)

	require.True(t, panel.Set("Model", "teapot"))
	assert.Equal(t, "teapot", lib.CurrentName())
	assert.False(t, panel.Set("Model", "dragon"))
	assert.Equal(t, "teapot", lib.CurrentName())
}

func TestModelLibrarySwapTwiceBeforeFlush(t *testing.T) {
	app := newTestApp(AssetServerModule{}, HierarchyModule{}, ModelLibraryModule{
		Models: []string{"bunny", "teapot", "head"},
		Loader: &fakeLoader{},
	})
	cmd := app.Commands()
	lib := Resource[ModelLibrary](app)
	assets := Resource[AssetServer](app)

	require.NoError(t, lib.Swap(cmd, assets, "teapot"))
	teapotRoot, _ := lib.Current()
	teapotMat := lib.data.Nodes[0].Primitives[0].Material
	require.NoError(t, lib.Swap(cmd, assets, "head"))
	app.FlushCommands()

	var roots []string
	MakeQuery1[ModelRootComponent](cmd).Map(func(_ EntityId, r *ModelRootComponent) bool {
		roots = append(roots, r.Name)
		return true
	})
	assert.Equal(t, []string{"head"}, roots)
	assert.False(t, cmd.Alive(teapotRoot))
	assert.True(t, teapotMat.Disposed())
	assert.Equal(t, 2, assets.MeshCount())

	headRoot, ok := lib.Current()
	require.True(t, ok)
	assert.True(t, cmd.Alive(headRoot))
	assert.Equal(t, "head", modelMaterials(cmd, headRoot)[0].Name)
}
