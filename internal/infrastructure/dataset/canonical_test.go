package dataset

import "testing"

func TestDistrictCanonicalization(t *testing.T) {
	canon, err := NewCanonicalizer()
	if err != nil {
		t.Fatalf("NewCanonicalizer() error = %v", err)
	}

	cases := []struct {
		in   string
		want string
	}{
		{"", "Douala 1"},
		{"Douala", "Douala 1"},
		{"R A S", "Douala 1"},
		{"Deido", "Douala 1"},
		{"DOUALA 3", "Douala 3"},
		{"Ngodi Bakoko", "Douala 3"},
		{"Boko", "Douala 4"},
		{"West", "Région de l'Ouest"},
		{"Yaoundé", "Yaoundé"},
		{"Sud ouest Tombel", "Tombel"},
		// Unmapped districts keep a title-cased form instead of vanishing.
		{"nouveau quartier", "Nouveau Quartier"},
	}
	for _, tc := range cases {
		if got := canon.District(tc.in); got != tc.want {
			t.Errorf("District(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProfessionCanonicalization(t *testing.T) {
	canon, err := NewCanonicalizer()
	if err != nil {
		t.Fatalf("NewCanonicalizer() error = %v", err)
	}

	cases := []struct {
		in   string
		want string
	}{
		{"", "Autres"},
		{"Bénévole", "Bénévole"},
		{"BENEVOLE", "Bénévole"},
		{"élève", "Étudiant"},
		{"commercant", "Commerçant"},
		{"ménagère", "Sans emploi"},
	}
	for _, tc := range cases {
		if got := canon.Profession(tc.in); got != tc.want {
			t.Errorf("Profession(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
