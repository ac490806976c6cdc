package data

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/l1jgo/whalecs/ecs"
	"github.com/l1jgo/whalecs/internal/codec"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Health struct {
	HP int `json:"hp"`
}

const prefabYAML = `
prefabs:
  - name: guard
    tags: [hostile]
    components:
      Position: {x: 10, y: 20}
      Health: {hp: 50}
  - name: crate
    components:
      Position: {x: 1, y: 1}
spawns:
  - prefab: guard
    count: 2
  - prefab: crate
    count: 1
`

func newTestRegistry() *codec.Registry {
	reg := codec.NewRegistry()
	codec.Register[Position](reg, "Position")
	codec.Register[Health](reg, "Health")
	return reg
}

func TestParsePrefabTable(t *testing.T) {
	table, err := ParsePrefabTable([]byte(prefabYAML))
	require.NoError(t, err)
	require.Equal(t, 2, table.Count())
	require.NotNil(t, table.Get("guard"))
	require.Nil(t, table.Get("nope"))
	require.Len(t, table.Spawns(), 2)
}

func TestSpawnerSpawn(t *testing.T) {
	table, err := ParsePrefabTable([]byte(prefabYAML))
	require.NoError(t, err)
	s := NewSpawner(table, newTestRegistry())
	w := ecs.NewWorld()

	e, err := s.Spawn(w, "guard")
	require.NoError(t, err)
	require.Equal(t, &Position{X: 10, Y: 20}, w.Get(e, (*Position)(nil)))
	require.Equal(t, &Health{HP: 50}, w.Get(e, (*Health)(nil)))
	require.True(t, w.Has(e, ecs.TagFor("hostile")))

	_, err = s.Spawn(w, "nope")
	require.Error(t, err)
}

func TestSpawnerSpawnAll(t *testing.T) {
	table, err := ParsePrefabTable([]byte(prefabYAML))
	require.NoError(t, err)
	s := NewSpawner(table, newTestRegistry())
	w := ecs.NewWorld()

	spawned, err := s.SpawnAll(w)
	require.NoError(t, err)
	require.Len(t, spawned, 3)
	require.Equal(t, 3, w.Size())
}

func TestSpawnerUnknownComponent(t *testing.T) {
	table, err := ParsePrefabTable([]byte(`
prefabs:
  - name: broken
    components:
      Mystery: {a: 1}
`))
	require.NoError(t, err)
	s := NewSpawner(table, newTestRegistry())
	_, err = s.Spawn(ecs.NewWorld(), "broken")
	require.Error(t, err)
}
