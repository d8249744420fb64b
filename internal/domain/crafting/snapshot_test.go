package crafting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

func TestSnapshot_Validate(t *testing.T) {
	tests := []struct {
		name    string
		snap    *crafting.Snapshot
		wantErr bool
	}{
		{
			name: "valid",
			snap: &crafting.Snapshot{
				Physical:    []int{1, 0, 2},
				Convertible: map[crafting.Commodity][]crafting.ConvertibleSource{1: {{ID: "s", Potential: 3}}},
				Peers:       []crafting.PeerHoldings{{Peer: "alice", Stock: map[crafting.Commodity]int{2: 1}, RemainingTrades: 1}},
			},
		},
		{
			name:    "wrong shape",
			snap:    &crafting.Snapshot{Physical: []int{1, 2}},
			wantErr: true,
		},
		{
			name:    "negative stock",
			snap:    &crafting.Snapshot{Physical: []int{1, -1, 0}},
			wantErr: true,
		},
		{
			name: "convertible out of range",
			snap: &crafting.Snapshot{
				Physical:    []int{0, 0, 0},
				Convertible: map[crafting.Commodity][]crafting.ConvertibleSource{3: {{ID: "s", Potential: 1}}},
			},
			wantErr: true,
		},
		{
			name: "peer stock out of range",
			snap: &crafting.Snapshot{
				Physical: []int{0, 0, 0},
				Peers:    []crafting.PeerHoldings{{Peer: "bob", Stock: map[crafting.Commodity]int{-1: 1}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate(3)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSnapshot_ValidateShapeError(t *testing.T) {
	err := (&crafting.Snapshot{Physical: []int{1}}).Validate(4)

	var shape *crafting.ErrSnapshotShape
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, 4, shape.Expected)
	assert.Equal(t, 1, shape.Actual)
}

func TestChangedCommodities(t *testing.T) {
	prev := &crafting.Snapshot{
		Physical:    []int{1, 2, 3, 0},
		Convertible: map[crafting.Commodity][]crafting.ConvertibleSource{0: {{ID: "a", Potential: 1}}},
		Peers:       []crafting.PeerHoldings{{Peer: "alice", Stock: map[crafting.Commodity]int{3: 1}, RemainingTrades: 2}},
	}
	next := &crafting.Snapshot{
		Physical:    []int{1, 5, 3, 0},
		Convertible: map[crafting.Commodity][]crafting.ConvertibleSource{0: {{ID: "a", Potential: 2}}},
		Peers:       []crafting.PeerHoldings{{Peer: "alice", Stock: map[crafting.Commodity]int{3: 1}, RemainingTrades: 2}},
	}

	assert.Equal(t, []crafting.Commodity{0, 1}, crafting.ChangedCommodities(prev, next))
	assert.Empty(t, crafting.ChangedCommodities(prev, prev))
	assert.Equal(t, []crafting.Commodity{0, 1, 2, 3}, crafting.ChangedCommodities(nil, next))

	next.Peers = nil
	assert.Equal(t, []crafting.Commodity{0, 1, 3}, crafting.ChangedCommodities(prev, next))
}

func TestSnapshotDefinition_Resolve(t *testing.T) {
	cat, err := sampleDefinition().Build()
	require.NoError(t, err)

	snap, err := (&crafting.SnapshotDefinition{
		Physical:    map[string]int{"Scrap": 4, "Drill": 1},
		Convertible: map[string][]crafting.SourceDef{"Bar": {{ID: "old-bar", Potential: 2}}},
		Peers:       []crafting.PeerDef{{Name: "alice", RemainingTrades: 3, Stock: map[string]int{"Baz": 1}}},
	}).Resolve(cat.Index())
	require.NoError(t, err)

	require.NoError(t, snap.Validate(cat.Size()))
	assert.Equal(t, []int{4, 0, 0, 0, 1}, snap.Physical)
	assert.Equal(t, 2, snap.ConvertiblePotential(1))
	peer, ok := snap.Peer("alice")
	require.True(t, ok)
	assert.Equal(t, 1, peer.Stock[2])
	assert.Equal(t, 3, peer.RemainingTrades)

	_, err = (&crafting.SnapshotDefinition{Physical: map[string]int{"Nope": 1}}).Resolve(cat.Index())
	var unknown *crafting.ErrUnknownCommodity
	assert.ErrorAs(t, err, &unknown)
}
