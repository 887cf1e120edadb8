package dummydb

import (
	"sync"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core/course"
)

func newCourse(t *testing.T, repo course.Repository, seats int) course.Course {
	t.Helper()
	crs, err := repo.CreateCourse(course.Course{
		ID:             "crs1",
		InstituteID:    "inst1",
		Title:          "Computer Science",
		Seats:          seats,
		AvailableSeats: seats,
		Status:         course.StatusFor(seats),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

// Seat conservation: concurrent reservations against limited capacity must
// succeed exactly capacity times and never drive the count negative.
func TestReserveSeatConcurrent(t *testing.T) {
	db, _ := Open()
	repo := NewCourseRepository(db)
	crs := newCourse(t, repo, 10)

	const attempts = 100
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		reserved  int
		exhausted int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ReserveSeat(crs.ID)
			mu.Lock()
			defer mu.Unlock()
			switch errors.Cause(err) {
			case nil:
				reserved++
			case course.ErrNoSeatsAvailable:
				exhausted++
			default:
				t.Errorf("ReserveSeat() unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if reserved != 10 {
		t.Errorf("reserved = %d, want 10", reserved)
	}
	if exhausted != attempts-10 {
		t.Errorf("exhausted = %d, want %d", exhausted, attempts-10)
	}

	got, err := repo.GetCourseByID(crs.ID)
	if err != nil {
		t.Fatalf("GetCourseByID() failed: %v", err)
	}
	if got.AvailableSeats != 0 {
		t.Errorf("AvailableSeats = %d, want 0", got.AvailableSeats)
	}
	if got.Status != course.StatusFull {
		t.Errorf("Status = %q, want %q", got.Status, course.StatusFull)
	}
}

func TestReleaseSeatNeverExceedsCapacity(t *testing.T) {
	db, _ := Open()
	repo := NewCourseRepository(db)
	crs := newCourse(t, repo, 2)

	if _, err := repo.ReserveSeat(crs.ID); err != nil {
		t.Fatalf("ReserveSeat() failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := repo.ReleaseSeat(crs.ID); err != nil {
			t.Fatalf("ReleaseSeat() failed: %v", err)
		}
	}

	got, _ := repo.GetCourseByID(crs.ID)
	if got.AvailableSeats != got.Seats {
		t.Errorf("AvailableSeats = %d, want %d", got.AvailableSeats, got.Seats)
	}
	if got.Status != course.StatusActive {
		t.Errorf("Status = %q, want %q", got.Status, course.StatusActive)
	}
}

func TestReserveSeatFlipsStatus(t *testing.T) {
	db, _ := Open()
	repo := NewCourseRepository(db)
	crs := newCourse(t, repo, 1)

	got, err := repo.ReserveSeat(crs.ID)
	if err != nil {
		t.Fatalf("ReserveSeat() failed: %v", err)
	}
	if got.Status != course.StatusFull {
		t.Errorf("Status = %q, want %q", got.Status, course.StatusFull)
	}

	if _, err = repo.ReserveSeat(crs.ID); errors.Cause(err) != course.ErrNoSeatsAvailable {
		t.Errorf("ReserveSeat() error = %v, want %v", err, course.ErrNoSeatsAvailable)
	}

	got, err = repo.ReleaseSeat(crs.ID)
	if err != nil {
		t.Fatalf("ReleaseSeat() failed: %v", err)
	}
	if got.Status != course.StatusActive {
		t.Errorf("Status = %q, want %q", got.Status, course.StatusActive)
	}
}
