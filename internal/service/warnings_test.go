package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func deriveFor(t *testing.T, procedure string, scenario domain.ScenarioAttributes) []domain.Warning {
	t.Helper()
	deriver := NewSafetyDeriver(testLogger())
	return deriver.Derive(&domain.ClinicalRequest{
		Topic:     "Low Back Pain",
		Procedure: procedure,
		Scenario:  scenario,
	})
}

func warningKinds(warnings []domain.Warning) []domain.WarningKind {
	kinds := make([]domain.WarningKind, 0, len(warnings))
	for _, w := range warnings {
		kinds = append(kinds, w.Kind)
	}
	return kinds
}

func findWarning(t *testing.T, warnings []domain.Warning, kind domain.WarningKind) domain.Warning {
	t.Helper()
	for _, w := range warnings {
		if w.Kind == kind {
			return w
		}
	}
	t.Fatalf("warning %s not found in %v", kind, warningKinds(warnings))
	return domain.Warning{}
}

func TestDerive_PregnancyWithRadiation(t *testing.T) {
	warnings := deriveFor(t, "CT lumbar spine without contrast", domain.ScenarioAttributes{
		Age:             30,
		Sex:             domain.SEX_FEMALE,
		PregnancyStatus: domain.PREGNANCY_YES,
	})

	w := findWarning(t, warnings, domain.WARN_PREGNANCY_RADIATION)
	assert.Equal(t, domain.SEVERITY_CRITICAL, w.Severity)
	assert.NotEmpty(t, w.Message)
}

func TestDerive_PregnancyWithRadiationFreeProcedure(t *testing.T) {
	warnings := deriveFor(t, "MRI lumbar spine without contrast", domain.ScenarioAttributes{
		Age:             30,
		Sex:             domain.SEX_FEMALE,
		PregnancyStatus: domain.PREGNANCY_YES,
	})

	assert.NotContains(t, warningKinds(warnings), domain.WARN_PREGNANCY_RADIATION)
}

func TestDerive_PregnancyUnknownChildbearingAge(t *testing.T) {
	warnings := deriveFor(t, "CT lumbar spine without contrast", domain.ScenarioAttributes{
		Age:             28,
		Sex:             domain.SEX_FEMALE,
		PregnancyStatus: domain.PREGNANCY_UNKNOWN,
	})

	w := findWarning(t, warnings, domain.WARN_PREGNANCY_UNKNOWN)
	assert.Equal(t, domain.SEVERITY_WARNING, w.Severity)
}

func TestDerive_PregnancyStatusNeverRecorded(t *testing.T) {
	// An omitted pregnancy_status must be treated like an explicit unknown
	warnings := deriveFor(t, "CT head without contrast", domain.ScenarioAttributes{
		Age: 30,
		Sex: domain.SEX_FEMALE,
	})

	w := findWarning(t, warnings, domain.WARN_PREGNANCY_UNKNOWN)
	assert.Equal(t, domain.SEVERITY_WARNING, w.Severity)
}

func TestDerive_PregnancyUnknownDoesNotFireForMales(t *testing.T) {
	warnings := deriveFor(t, "CT lumbar spine without contrast", domain.ScenarioAttributes{
		Age:             28,
		Sex:             domain.SEX_MALE,
		PregnancyStatus: domain.PREGNANCY_UNKNOWN,
	})

	assert.NotContains(t, warningKinds(warnings), domain.WARN_PREGNANCY_UNKNOWN)
}

func TestDerive_PregnancyUnknownOutsideAgeWindow(t *testing.T) {
	warnings := deriveFor(t, "CT lumbar spine without contrast", domain.ScenarioAttributes{
		Age:             70,
		Sex:             domain.SEX_FEMALE,
		PregnancyStatus: domain.PREGNANCY_UNKNOWN,
	})

	assert.NotContains(t, warningKinds(warnings), domain.WARN_PREGNANCY_UNKNOWN)
}

func TestDerive_ContrastAllergy(t *testing.T) {
	warnings := deriveFor(t, "CT lumbar spine with contrast", domain.ScenarioAttributes{
		Age:             50,
		ContrastAllergy: true,
	})

	w := findWarning(t, warnings, domain.WARN_CONTRAST_ALLERGY)
	assert.Equal(t, domain.SEVERITY_CRITICAL, w.Severity)
}

func TestDerive_ContrastAllergyIgnoredWithoutContrast(t *testing.T) {
	warnings := deriveFor(t, "MRI lumbar spine without contrast", domain.ScenarioAttributes{
		Age:             50,
		ContrastAllergy: true,
	})

	assert.NotContains(t, warningKinds(warnings), domain.WARN_CONTRAST_ALLERGY)
}

func TestDerive_SevereRenalImpairment(t *testing.T) {
	warnings := deriveFor(t, "CT lumbar spine with contrast", domain.ScenarioAttributes{
		Age:  65,
		EGFR: floatPtr(25),
	})

	w := findWarning(t, warnings, domain.WARN_RENAL_SEVERE)
	assert.Equal(t, domain.SEVERITY_WARNING, w.Severity)
}

func TestDerive_RenalImpairmentFlagWithoutEGFR(t *testing.T) {
	warnings := deriveFor(t, "CT lumbar spine with contrast", domain.ScenarioAttributes{
		Age:             65,
		RenalImpairment: true,
	})

	assert.Contains(t, warningKinds(warnings), domain.WARN_RENAL_SEVERE)
}

func TestDerive_ModerateRenalImpairment(t *testing.T) {
	warnings := deriveFor(t, "CT lumbar spine with contrast", domain.ScenarioAttributes{
		Age:  65,
		EGFR: floatPtr(45),
	})

	w := findWarning(t, warnings, domain.WARN_RENAL_MODERATE)
	assert.Equal(t, domain.SEVERITY_INFO, w.Severity)
	assert.NotContains(t, warningKinds(warnings), domain.WARN_RENAL_SEVERE)
}

func TestDerive_NormalRenalFunctionNoWarning(t *testing.T) {
	warnings := deriveFor(t, "CT lumbar spine with contrast", domain.ScenarioAttributes{
		Age:  65,
		EGFR: floatPtr(90),
	})

	kinds := warningKinds(warnings)
	assert.NotContains(t, kinds, domain.WARN_RENAL_SEVERE)
	assert.NotContains(t, kinds, domain.WARN_RENAL_MODERATE)
}

func TestDerive_Metformin(t *testing.T) {
	warnings := deriveFor(t, "CT lumbar spine with contrast", domain.ScenarioAttributes{
		Age:         55,
		OnMetformin: true,
	})

	w := findWarning(t, warnings, domain.WARN_METFORMIN)
	assert.Equal(t, domain.SEVERITY_INFO, w.Severity)
}

func TestDerive_Anticoagulation(t *testing.T) {
	// Fires regardless of the procedure class
	warnings := deriveFor(t, "Ultrasound abdomen", domain.ScenarioAttributes{
		Age:               60,
		OnAnticoagulation: true,
	})

	w := findWarning(t, warnings, domain.WARN_ANTICOAGULATION)
	assert.Equal(t, domain.SEVERITY_INFO, w.Severity)
}

func TestDerive_RecentImagingSameRegion(t *testing.T) {
	warnings := deriveFor(t, "MRI lumbar spine without contrast", domain.ScenarioAttributes{
		Age: 40,
		PriorImaging: []domain.PriorImagingRecord{
			{Region: "Low Back", DaysAgo: 10},
		},
	})

	w := findWarning(t, warnings, domain.WARN_RECENT_IMAGING)
	assert.Equal(t, domain.SEVERITY_INFO, w.Severity)
}

func TestDerive_OldImagingDoesNotWarn(t *testing.T) {
	warnings := deriveFor(t, "MRI lumbar spine without contrast", domain.ScenarioAttributes{
		Age: 40,
		PriorImaging: []domain.PriorImagingRecord{
			{Region: "Low Back", DaysAgo: 90},
		},
	})

	assert.NotContains(t, warningKinds(warnings), domain.WARN_RECENT_IMAGING)
}

func TestDerive_DifferentRegionDoesNotWarn(t *testing.T) {
	warnings := deriveFor(t, "MRI lumbar spine without contrast", domain.ScenarioAttributes{
		Age: 40,
		PriorImaging: []domain.PriorImagingRecord{
			{Region: "Head", DaysAgo: 5},
		},
	})

	assert.NotContains(t, warningKinds(warnings), domain.WARN_RECENT_IMAGING)
}

func TestDerive_IndependentRulesCoFire(t *testing.T) {
	warnings := deriveFor(t, "CT lumbar spine with contrast", domain.ScenarioAttributes{
		Age:               40,
		Sex:               domain.SEX_FEMALE,
		PregnancyStatus:   domain.PREGNANCY_YES,
		ContrastAllergy:   true,
		OnMetformin:       true,
		OnAnticoagulation: true,
		EGFR:              floatPtr(25),
	})

	kinds := warningKinds(warnings)
	assert.Contains(t, kinds, domain.WARN_PREGNANCY_RADIATION)
	assert.Contains(t, kinds, domain.WARN_CONTRAST_ALLERGY)
	assert.Contains(t, kinds, domain.WARN_RENAL_SEVERE)
	assert.Contains(t, kinds, domain.WARN_METFORMIN)
	assert.Contains(t, kinds, domain.WARN_ANTICOAGULATION)
	require.Len(t, warnings, 5)
}

func TestDerive_CleanScenarioNoWarnings(t *testing.T) {
	warnings := deriveFor(t, "MRI lumbar spine without contrast", domain.ScenarioAttributes{
		Age:             45,
		Sex:             domain.SEX_MALE,
		PregnancyStatus: domain.PREGNANCY_NO,
	})

	assert.Empty(t, warnings)
}

func TestClassifyProcedure(t *testing.T) {
	cases := []struct {
		procedure string
		radiation bool
		contrast  bool
	}{
		{"CT head without contrast", true, false},
		{"CT abdomen and pelvis with contrast", true, true},
		{"CTA chest with contrast", true, true},
		{"MRI lumbar spine without contrast", false, false},
		{"MRI lumbar spine without and with contrast", false, true},
		{"Radiograph knee", true, false},
		{"Ultrasound abdomen", false, false},
		{"Ventilation-perfusion scan", true, false},
	}

	for _, tc := range cases {
		class := classifyProcedure(tc.procedure)
		assert.Equal(t, tc.radiation, class.radiationBased, "%s radiation", tc.procedure)
		assert.Equal(t, tc.contrast, class.contrastBased, "%s contrast", tc.procedure)
	}
}
