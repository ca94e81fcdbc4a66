package similarity

import "context"

// Catalog is the read-only data source behind the similarity lookup.
type Catalog interface {
	// Adventure returns the record for id, or false when absent.
	Adventure(ctx context.Context, id int64) (Record, bool, error)
	// Neighbors returns the ranked neighbor ids of id, most similar first.
	Neighbors(ctx context.Context, id int64) ([]int64, error)
}

// SeedSnapshot is the catalog shipped with the service.
func SeedSnapshot() Snapshot {
	return Snapshot{
		Adventures: []Record{
			{ID: 1, Title: "Randonnée dans les vignobles de Saint-Émilion"},
			{ID: 2, Title: "Balade en kayak sur la Dordogne"},
			{ID: 3, Title: "Balade dans les vignes de Pomerol"},
			{ID: 4, Title: "Randonnée côtière à Biarritz"},
			{ID: 5, Title: "Escalade dans les Pyrénées"},
			{ID: 6, Title: "Vélo dans la vallée de la Loire"},
			{ID: 7, Title: "Découverte du patrimoine viticole de Fronsac"},
		},
		Neighbors: map[int64][]int64{
			1: {3, 7},
			2: {4, 6},
			3: {1, 7},
			4: {2, 5},
			5: {4},
			6: {2},
			7: {1, 3},
		},
	}
}
