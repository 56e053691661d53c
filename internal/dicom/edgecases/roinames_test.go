package edgecases

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/mrsinham/rtforge/internal/util"
)

func TestMessyCaseVariant_StaysRecognisable(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 50; i++ {
		for _, base := range []string{"PTV", "Brainstem", "Parotid_L", "Femur_Head_R"} {
			variant := MessyCaseVariant(base, rng)
			if got := util.SuggestROIName(variant); got != base {
				t.Errorf("SuggestROIName(%q) = %q, want %q", variant, got, base)
			}
		}
	}
}

func TestPrefixedVariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 20; i++ {
		variant := PrefixedVariant("Heart", rng)
		if !strings.HasSuffix(variant, "Heart") || variant == "Heart" {
			t.Errorf("PrefixedVariant = %q", variant)
		}
		if util.IsStandardROIName(variant) {
			t.Errorf("%q should not be a standard name", variant)
		}
	}
}

func TestSpecialCharROIName(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 20; i++ {
		variant := SpecialCharROIName("Liver", rng)
		if !strings.Contains(variant, "Liver") || variant == "Liver" {
			t.Errorf("SpecialCharROIName = %q", variant)
		}
	}
}
