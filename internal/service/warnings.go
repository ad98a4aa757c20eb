package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
)

// eGFR thresholds for contrast safety rules (mL/min/1.73m²)
const (
	egfrSevereBelow   = 30.0
	egfrModerateBelow = 60.0
)

// recentImagingWindowDays bounds the "recent prior imaging" informational rule
const recentImagingWindowDays = 30

// procedureClass captures the safety-relevant nature of the proposed procedure
type procedureClass struct {
	radiationBased bool
	contrastBased  bool
}

// classifyProcedure derives the safety class from the procedure wording.
// A procedure can be both radiation- and contrast-based; MRI without contrast
// and ultrasound are neither.
func classifyProcedure(procedure string) procedureClass {
	lp := strings.ToLower(procedure)

	radiationMarkers := []string{"ct", "cta", "radiograph", "x-ray", "fluoroscop", "nuclear", "pet", "spect", "angiogra", "ventilation-perfusion"}
	contrastMarkers := []string{"with contrast", "angiogra", "arthrogram", "cta"}

	var class procedureClass
	for _, marker := range radiationMarkers {
		if strings.Contains(lp, marker) {
			class.radiationBased = true
			break
		}
	}
	// "MRI ... without and with contrast" still uses contrast
	if strings.Contains(lp, "without contrast") {
		lp = strings.ReplaceAll(lp, "without contrast", "")
	}
	for _, marker := range contrastMarkers {
		if strings.Contains(lp, marker) {
			class.contrastBased = true
			break
		}
	}
	return class
}

// safetyRule is one {predicate, effect} entry. Rules are independent: every
// rule whose precondition holds emits exactly one warning, and none suppress
// the others.
type safetyRule struct {
	kind     domain.WarningKind
	severity domain.Severity
	applies  func(req *domain.ClinicalRequest, class procedureClass) bool
	message  func(req *domain.ClinicalRequest) string
}

// SafetyDeriver cross-checks scenario attributes against the proposed
// procedure and emits severity-tagged warnings.
type SafetyDeriver struct {
	logger *logrus.Logger
	rules  []safetyRule
}

// NewSafetyDeriver creates a deriver with the fixed safety rule set
func NewSafetyDeriver(logger *logrus.Logger) *SafetyDeriver {
	return &SafetyDeriver{logger: logger, rules: safetyRules}
}

// Derive evaluates every safety rule; all triggered warnings are returned
func (d *SafetyDeriver) Derive(req *domain.ClinicalRequest) []domain.Warning {
	class := classifyProcedure(req.Procedure)

	warnings := make([]domain.Warning, 0)
	for _, rule := range d.rules {
		if !rule.applies(req, class) {
			continue
		}
		warnings = append(warnings, domain.Warning{
			Kind:     rule.kind,
			Message:  rule.message(req),
			Severity: rule.severity,
		})
	}

	if len(warnings) > 0 {
		d.logger.WithFields(logrus.Fields{
			"procedure": req.Procedure,
			"warnings":  len(warnings),
		}).Debug("Safety rules triggered")
	}
	return warnings
}

var safetyRules = []safetyRule{
	{
		kind:     domain.WARN_PREGNANCY_RADIATION,
		severity: domain.SEVERITY_CRITICAL,
		applies: func(req *domain.ClinicalRequest, class procedureClass) bool {
			return req.Scenario.PregnancyStatus == domain.PREGNANCY_YES && class.radiationBased
		},
		message: func(req *domain.ClinicalRequest) string {
			return fmt.Sprintf("Patient is pregnant and %s involves ionizing radiation; consider a radiation-free alternative", req.Procedure)
		},
	},
	{
		kind:     domain.WARN_PREGNANCY_UNKNOWN,
		severity: domain.SEVERITY_WARNING,
		applies: func(req *domain.ClinicalRequest, class procedureClass) bool {
			s := &req.Scenario
			// Anything other than a documented yes/no counts as unknown,
			// including a request that never recorded the status.
			return s.PregnancyStatus != domain.PREGNANCY_YES &&
				s.PregnancyStatus != domain.PREGNANCY_NO &&
				s.Sex != domain.SEX_MALE &&
				s.Age >= 12 && s.Age <= 50 &&
				class.radiationBased
		},
		message: func(req *domain.ClinicalRequest) string {
			return "Pregnancy status is unknown for a patient of childbearing age; confirm before a radiation-based study"
		},
	},
	{
		kind:     domain.WARN_CONTRAST_ALLERGY,
		severity: domain.SEVERITY_CRITICAL,
		applies: func(req *domain.ClinicalRequest, class procedureClass) bool {
			return req.Scenario.ContrastAllergy && class.contrastBased
		},
		message: func(req *domain.ClinicalRequest) string {
			return "Documented contrast allergy; premedication or a non-contrast alternative is required"
		},
	},
	{
		kind:     domain.WARN_RENAL_SEVERE,
		severity: domain.SEVERITY_WARNING,
		applies: func(req *domain.ClinicalRequest, class procedureClass) bool {
			s := &req.Scenario
			severeEGFR := s.EGFR != nil && *s.EGFR < egfrSevereBelow
			return (severeEGFR || s.RenalImpairment) && class.contrastBased
		},
		message: func(req *domain.ClinicalRequest) string {
			return "Severely reduced renal function; iodinated or gadolinium contrast carries significant risk"
		},
	},
	{
		kind:     domain.WARN_RENAL_MODERATE,
		severity: domain.SEVERITY_INFO,
		applies: func(req *domain.ClinicalRequest, class procedureClass) bool {
			s := &req.Scenario
			return s.EGFR != nil && *s.EGFR >= egfrSevereBelow && *s.EGFR < egfrModerateBelow && class.contrastBased
		},
		message: func(req *domain.ClinicalRequest) string {
			return fmt.Sprintf("eGFR %.0f is moderately reduced; verify contrast protocol and hydration", *req.Scenario.EGFR)
		},
	},
	{
		kind:     domain.WARN_METFORMIN,
		severity: domain.SEVERITY_INFO,
		applies: func(req *domain.ClinicalRequest, class procedureClass) bool {
			return req.Scenario.OnMetformin && class.contrastBased
		},
		message: func(req *domain.ClinicalRequest) string {
			return "Patient takes metformin; follow local guidance on withholding around contrast administration"
		},
	},
	{
		kind:     domain.WARN_ANTICOAGULATION,
		severity: domain.SEVERITY_INFO,
		applies: func(req *domain.ClinicalRequest, _ procedureClass) bool {
			return req.Scenario.OnAnticoagulation
		},
		message: func(req *domain.ClinicalRequest) string {
			return "Patient is anticoagulated; relevant if an interventional procedure follows imaging"
		},
	},
	{
		kind:     domain.WARN_RECENT_IMAGING,
		severity: domain.SEVERITY_INFO,
		applies: func(req *domain.ClinicalRequest, _ procedureClass) bool {
			region := strings.ToLower(req.BodyRegion())
			for _, prior := range req.Scenario.PriorImaging {
				pr := strings.ToLower(prior.Region)
				if prior.DaysAgo <= recentImagingWindowDays &&
					(strings.Contains(region, pr) || strings.Contains(pr, region)) {
					return true
				}
			}
			return false
		},
		message: func(req *domain.ClinicalRequest) string {
			return "Imaging of the same body region was performed within the last 30 days; review prior results first"
		},
	},
}
