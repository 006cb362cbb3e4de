package services

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/farsightlab/arv-backend/internal/types"
)

func fixtureSession(t *testing.T, status types.SessionStatus, bindingToA bool) *types.PredictionSession {
	t.Helper()

	picA := types.Picture{ID: "pic-a", ImageURL: "https://img.test/a", AvgColor: "#000000", Description: "dark forest"}
	picB := types.Picture{ID: "pic-b", ImageURL: "https://img.test/b", AvgColor: "#ffffff", Description: "bright beach"}

	rawA, err := json.Marshal(picA)
	if err != nil {
		t.Fatalf("marshal picture A: %v", err)
	}
	rawB, err := json.Marshal(picB)
	if err != nil {
		t.Fatalf("marshal picture B: %v", err)
	}

	binding := picA.ID
	if !bindingToA {
		binding = picB.ID
	}

	return &types.PredictionSession{
		ID:               uuid.New(),
		Status:           status,
		LabelA:           "Vikings",
		LabelB:           "Packers",
		PictureA:         datatypes.JSON(rawA),
		PictureB:         datatypes.JSON(rawB),
		BindingPictureID: binding,
	}
}

func marshalView(t *testing.T, view SessionView) map[string]any {
	t.Helper()
	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	return out
}

func TestProjectBlindHidesPicturesAndBinding(t *testing.T) {
	for _, status := range []types.SessionStatus{types.SessionStatusCreated, types.SessionStatusPredictionMade} {
		t.Run(string(status), func(t *testing.T) {
			session := fixtureSession(t, status, true)
			view, err := Project(session, false)
			if err != nil {
				t.Fatalf("Project: %v", err)
			}
			if _, ok := view.(BlindSessionView); !ok {
				t.Fatalf("got view type %T, want BlindSessionView", view)
			}

			fields := marshalView(t, view)
			for _, forbidden := range []string{"picture_a", "picture_b", "binding_picture_id", "revealed_picture"} {
				if _, present := fields[forbidden]; present {
					t.Fatalf("blind view leaked %q", forbidden)
				}
			}
			if fields["label_a"] != "Vikings" || fields["label_b"] != "Packers" {
				t.Fatalf("labels missing from blind view: %v", fields)
			}
		})
	}
}

func TestProjectInspectShowsPicturesButNeverBinding(t *testing.T) {
	session := fixtureSession(t, types.SessionStatusCreated, true)
	view, err := Project(session, true)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	inspect, ok := view.(InspectSessionView)
	if !ok {
		t.Fatalf("got view type %T, want InspectSessionView", view)
	}
	if inspect.PictureA == nil || inspect.PictureA.ID != "pic-a" {
		t.Fatalf("inspect view missing picture A: %+v", inspect.PictureA)
	}
	if inspect.PictureB == nil || inspect.PictureB.ID != "pic-b" {
		t.Fatalf("inspect view missing picture B: %+v", inspect.PictureB)
	}

	fields := marshalView(t, view)
	if _, present := fields["binding_picture_id"]; present {
		t.Fatal("inspect view leaked the binding")
	}
}

func TestProjectRevealedResolvesSinglePicture(t *testing.T) {
	cases := []struct {
		name         string
		bindingToA   bool
		winningLabel string
		revealedID   string
		wantPicture  string
	}{
		{"binding_a_wins_a", true, "Vikings", "pic-a", "pic-a"},
		{"binding_a_wins_b", true, "Packers", "pic-b", "pic-b"},
		{"binding_b_wins_a", false, "Vikings", "pic-b", "pic-b"},
		{"binding_b_wins_b", false, "Packers", "pic-a", "pic-a"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := fixtureSession(t, types.SessionStatusRevealed, tc.bindingToA)
			session.WinningLabel = tc.winningLabel
			session.RevealedPictureID = tc.revealedID

			view, err := Project(session, false)
			if err != nil {
				t.Fatalf("Project: %v", err)
			}
			revealed, ok := view.(RevealedSessionView)
			if !ok {
				t.Fatalf("got view type %T, want RevealedSessionView", view)
			}
			if revealed.RevealedPicture == nil || revealed.RevealedPicture.ID != tc.wantPicture {
				t.Fatalf("revealed picture = %+v, want %s", revealed.RevealedPicture, tc.wantPicture)
			}

			fields := marshalView(t, view)
			for _, forbidden := range []string{"picture_a", "picture_b", "binding_picture_id"} {
				if _, present := fields[forbidden]; present {
					t.Fatalf("revealed view leaked %q", forbidden)
				}
			}
		})
	}
}

func TestProjectRevealedRejectsUnknownRevealedID(t *testing.T) {
	session := fixtureSession(t, types.SessionStatusRevealed, true)
	session.WinningLabel = "Vikings"
	session.RevealedPictureID = "someone-elses-picture"

	if _, err := Project(session, false); err == nil {
		t.Fatal("expected error for unknown revealed picture id")
	}
}

func TestProjectRevealedIgnoresInspect(t *testing.T) {
	session := fixtureSession(t, types.SessionStatusRevealed, true)
	session.WinningLabel = "Vikings"
	session.RevealedPictureID = "pic-a"

	view, err := Project(session, true)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if _, ok := view.(RevealedSessionView); !ok {
		t.Fatalf("got view type %T, want RevealedSessionView", view)
	}
}
