package library_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"reelfeed/models"
	"reelfeed/services/library"
)

func newTestService(t *testing.T) *library.Service {
	t.Helper()
	svc, err := library.NewServiceWithFs(afero.NewMemMapFs(), "data")
	if err != nil {
		t.Fatalf("failed to create library service: %v", err)
	}
	return svc
}

func input(id, title string) models.MovieInput {
	return models.MovieInput{ID: models.FlexID(id), Title: title}
}

func TestLoadReturnsDefaultsWhenStoreMissing(t *testing.T) {
	svc := newTestService(t)

	lib := svc.Load()
	if len(lib.MyList) != 0 || len(lib.WatchedList) != 0 || len(lib.BlockedMovies) != 0 {
		t.Fatalf("expected empty default store, got %+v", lib)
	}
	if lib.Version != models.LibraryVersion {
		t.Fatalf("expected version %d, got %d", models.LibraryVersion, lib.Version)
	}
}

func TestLoadReturnsDefaultsWhenStoreCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	svc, err := library.NewServiceWithFs(fs, "data")
	if err != nil {
		t.Fatalf("failed to create library service: %v", err)
	}
	if err := afero.WriteFile(fs, filepath.Join("data", "library.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt store: %v", err)
	}

	lib := svc.Load()
	if len(lib.MyList) != 0 || lib.Version != models.LibraryVersion {
		t.Fatalf("expected defaults for corrupt store, got %+v", lib)
	}
}

func TestAddToListKeepsIDInOneListOnly(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.AddToList(models.ListMyList, input("100", "First")); err != nil {
		t.Fatalf("add to myList: %v", err)
	}
	lib, err := svc.AddToList(models.ListWatched, input("100", "First"))
	if err != nil {
		t.Fatalf("add to watchedList: %v", err)
	}

	if len(lib.MyList) != 0 {
		t.Fatalf("expected id evicted from myList, got %+v", lib.MyList)
	}
	if len(lib.WatchedList) != 1 || lib.WatchedList[0].ID != "100" {
		t.Fatalf("expected id in watchedList, got %+v", lib.WatchedList)
	}
	if lib.WatchedList[0].WatchedAt.IsZero() {
		t.Fatalf("expected watched timestamp to be stamped")
	}
}

func TestAddToListIgnoresDuplicates(t *testing.T) {
	svc := newTestService(t)

	svc.AddToList(models.ListMyList, input("1", "One"))
	lib, _ := svc.AddToList(models.ListMyList, input("1", "One again"))

	if len(lib.MyList) != 1 || lib.MyList[0].Title != "One" {
		t.Fatalf("expected first insert to win, got %+v", lib.MyList)
	}
}

func TestAddToListRejectsIDAlreadyWatched(t *testing.T) {
	svc := newTestService(t)

	svc.AddToList(models.ListWatched, input("5", "Seen"))
	lib, _ := svc.AddToList(models.ListMyList, input("5", "Seen"))

	if len(lib.MyList) != 0 {
		t.Fatalf("expected watched id to stay out of myList, got %+v", lib.MyList)
	}
}

func TestWatchedListIsMostRecentFirst(t *testing.T) {
	svc := newTestService(t)

	svc.AddToList(models.ListWatched, input("1", "First Watched"))
	lib, _ := svc.AddToList(models.ListWatched, input("2", "Second Watched"))

	if len(lib.WatchedList) != 2 {
		t.Fatalf("expected two watched entries, got %d", len(lib.WatchedList))
	}
	if lib.WatchedList[0].ID != "2" {
		t.Fatalf("expected most recent entry first, got %+v", lib.WatchedList)
	}
}

func TestAddToListNormalizesAliases(t *testing.T) {
	svc := newTestService(t)

	lib, _ := svc.AddToList(models.ListMyList, models.MovieInput{
		ID:     "9",
		Title:  "Aliased",
		Poster: "https://example.com/p.jpg",
		Rating: 4,
	})
	if lib.MyList[0].Poster != "https://example.com/p.jpg" || lib.MyList[0].Rating != 4 {
		t.Fatalf("expected legacy aliases normalized, got %+v", lib.MyList[0])
	}

	lib, _ = svc.AddToList(models.ListMyList, models.MovieInput{
		ID:         "10",
		Title:      "Current",
		PosterURL:  "https://example.com/q.jpg",
		UserRating: 3.5,
	})
	if lib.MyList[1].Poster != "https://example.com/q.jpg" || lib.MyList[1].Rating != 3.5 {
		t.Fatalf("expected current field names normalized, got %+v", lib.MyList[1])
	}
}

func TestRemoveFromListIsLenient(t *testing.T) {
	svc := newTestService(t)

	svc.AddToList(models.ListMyList, input("1", "One"))
	lib, err := svc.RemoveFromList("does-not-exist", models.ListMyList)
	if err != nil {
		t.Fatalf("remove of absent id should not error: %v", err)
	}
	if len(lib.MyList) != 1 {
		t.Fatalf("expected list untouched, got %+v", lib.MyList)
	}

	lib, _ = svc.RemoveFromList("1", models.ListMyList)
	if len(lib.MyList) != 0 {
		t.Fatalf("expected entry removed, got %+v", lib.MyList)
	}
}

func TestMoveToMyListRelocatesAndRestamps(t *testing.T) {
	svc := newTestService(t)

	svc.AddToList(models.ListMyList, input("keep", "Keeper"))
	svc.AddToList(models.ListWatched, input("77", "Rewatch"))

	lib, err := svc.MoveToMyList("77")
	if err != nil {
		t.Fatalf("move to myList: %v", err)
	}

	if len(lib.WatchedList) != 0 {
		t.Fatalf("expected watched entry gone, got %+v", lib.WatchedList)
	}
	if len(lib.MyList) != 2 || lib.MyList[1].ID != "77" {
		t.Fatalf("expected entry appended to end of myList, got %+v", lib.MyList)
	}
	if lib.MyList[1].AddedAt.IsZero() {
		t.Fatalf("expected added time restamped")
	}
	if !lib.MyList[1].WatchedAt.IsZero() {
		t.Fatalf("expected watched timestamp cleared")
	}
}

func TestMoveToMyListNoOpWhenAbsent(t *testing.T) {
	svc := newTestService(t)

	lib, err := svc.MoveToMyList("missing")
	if err != nil {
		t.Fatalf("move of absent id should not error: %v", err)
	}
	if len(lib.MyList) != 0 {
		t.Fatalf("expected no entries, got %+v", lib.MyList)
	}
}

func TestReorderMyListReplacesWholesale(t *testing.T) {
	svc := newTestService(t)

	svc.AddToList(models.ListMyList, input("1", "One"))
	svc.AddToList(models.ListMyList, input("2", "Two"))

	current := svc.Load()
	reversed := []models.StoredMovie{current.MyList[1], current.MyList[0]}

	lib, err := svc.ReorderMyList(reversed)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if lib.MyList[0].ID != "2" || lib.MyList[1].ID != "1" {
		t.Fatalf("expected reversed order, got %+v", lib.MyList)
	}
}

func TestBlockMovieIsIdempotent(t *testing.T) {
	svc := newTestService(t)

	svc.BlockMovie("13")
	lib, err := svc.BlockMovie("13")
	if err != nil {
		t.Fatalf("block: %v", err)
	}

	count := 0
	for _, id := range lib.BlockedMovies {
		if id == "13" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one occurrence of the blocked id, got %d", count)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	svc := newTestService(t)

	svc.AddToList(models.ListMyList, input("1", "One"))
	svc.AddToList(models.ListWatched, models.MovieInput{ID: "2", Title: "Two", UserRating: 4.5})
	svc.BlockMovie("3")
	before := svc.Load()

	snapshot, err := svc.ExportSnapshot()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if _, err := svc.ClearAll(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := svc.ImportSnapshot(snapshot); err != nil {
		t.Fatalf("import: %v", err)
	}

	after := svc.Load()
	if len(after.MyList) != len(before.MyList) ||
		len(after.WatchedList) != len(before.WatchedList) ||
		len(after.BlockedMovies) != len(before.BlockedMovies) {
		t.Fatalf("round trip mismatch: before=%+v after=%+v", before, after)
	}
	if after.WatchedList[0].ID != "2" || after.WatchedList[0].Rating != 4.5 {
		t.Fatalf("expected watched entry restored, got %+v", after.WatchedList[0])
	}
}

func TestImportSnapshotRejectsInvalidJSON(t *testing.T) {
	svc := newTestService(t)
	svc.AddToList(models.ListMyList, input("1", "One"))

	if err := svc.ImportSnapshot("{broken"); err == nil {
		t.Fatalf("expected parse failure")
	}

	lib := svc.Load()
	if len(lib.MyList) != 1 {
		t.Fatalf("expected store untouched after failed import, got %+v", lib.MyList)
	}
}

func TestStats(t *testing.T) {
	svc := newTestService(t)

	svc.AddToList(models.ListMyList, input("1", "Queued"))
	svc.AddToList(models.ListWatched, models.MovieInput{ID: "2", Title: "Rated", UserRating: 4})
	svc.AddToList(models.ListWatched, models.MovieInput{ID: "3", Title: "Also Rated", UserRating: 3})
	svc.AddToList(models.ListWatched, models.MovieInput{ID: "4", Title: "Unrated"})
	svc.BlockMovie("5")

	stats := svc.Stats()
	if stats.WatchedCount != 3 || stats.RatedCount != 2 || stats.MyListCount != 1 || stats.BlockedCount != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.AvgRating != 3.5 {
		t.Fatalf("expected avg rating 3.5, got %v", stats.AvgRating)
	}
}

func TestStatsZeroWhenNoRatings(t *testing.T) {
	svc := newTestService(t)

	stats := svc.Stats()
	if stats.AvgRating != 0 {
		t.Fatalf("expected zero avg rating, got %v", stats.AvgRating)
	}
}
