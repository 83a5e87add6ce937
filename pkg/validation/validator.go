package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxParents    = 3
	MaxTextLength = 64

	// Regular expressions
	namePattern = regexp.MustCompile(`^(P|L|Ls|C|Am|Lb)-[1-9][0-9]*$`)
	textPattern = regexp.MustCompile(`^[^\x00-\x1f]*$`)
)

func init() {
	validate = validator.New()
}

// Vector is a free location or direction as typed by a user. It need not be
// normalized, but it must not be the zero vector.
type Vector [3]float64

// IsZero reports whether all components are zero
func (v Vector) IsZero() bool {
	return v == Vector{}
}

// NodeRequest is a request to create a node, before it is turned into a
// scene spec.
type NodeRequest struct {
	Variant      string   `yaml:"variant" validate:"required,oneof=point line segment circle angle_marker label"`
	Construction string   `yaml:"construction" validate:"required,oneof=free antipode intersection through_points perpendicular from_points from_lines anchored"`
	Parents      []uint64 `yaml:"parents,omitempty" validate:"max=3,dive,min=1"`
	Location     *Vector  `yaml:"location,omitempty"`
	Normal       *Vector  `yaml:"normal,omitempty"`
	Start        *Vector  `yaml:"start,omitempty"`
	Center       *Vector  `yaml:"center,omitempty"`
	ArcLength    float64  `yaml:"arc_length,omitempty" validate:"gte=0,lte=6.283185307179586"`
	Radius       float64  `yaml:"radius,omitempty" validate:"gte=0,lt=3.141592653589793"`
	Index        int      `yaml:"index,omitempty" validate:"oneof=0 1"`
	Text         string   `yaml:"text,omitempty" validate:"max=64"`
}

// free parameters each free variant must carry
var freeParams = map[string][]string{
	"point":   {"Location"},
	"line":    {"Normal"},
	"segment": {"Start", "Normal", "ArcLength"},
	"circle":  {"Center", "Radius"},
}

// ValidateNodeRequest checks a node request's shape. Whether the parents
// exist and have the right variants is decided by the scene.
func ValidateNodeRequest(req *NodeRequest) error {
	if req == nil {
		return errors.New("node request cannot be nil")
	}

	// Validate using struct tags
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if req.Construction == "free" {
		if len(req.Parents) > 0 {
			return fmt.Errorf("Parents: a free %s has no parents, got %d", req.Variant, len(req.Parents))
		}
		for _, field := range freeParams[req.Variant] {
			if err := requireParam(req, field); err != nil {
				return err
			}
		}
	} else if len(req.Parents) == 0 {
		return fmt.Errorf("Parents: %s %s needs parents", req.Construction, req.Variant)
	}

	seen := make(map[uint64]bool, len(req.Parents))
	for i, id := range req.Parents {
		if seen[id] {
			return fmt.Errorf("Parents: parent %d at index %d is repeated", id, i)
		}
		seen[id] = true
	}

	if req.Text != "" {
		if err := ValidateLabelText(req.Text); err != nil {
			return fmt.Errorf("Text: %w", err)
		}
	}
	return nil
}

func requireParam(req *NodeRequest, field string) error {
	var missing bool
	switch field {
	case "Location":
		missing = req.Location == nil || req.Location.IsZero()
	case "Normal":
		missing = req.Normal == nil || req.Normal.IsZero()
	case "Start":
		missing = req.Start == nil || req.Start.IsZero()
	case "Center":
		missing = req.Center == nil || req.Center.IsZero()
	case "ArcLength":
		missing = req.ArcLength == 0
	case "Radius":
		missing = req.Radius == 0
	}
	if missing {
		return fmt.Errorf("%s: field is required for a free %s", field, req.Variant)
	}
	return nil
}

// ValidateLabelText validates the text of a label
func ValidateLabelText(text string) error {
	if len(text) > MaxTextLength {
		return fmt.Errorf("label text exceeds maximum length of %d characters", MaxTextLength)
	}
	if !textPattern.MatchString(text) {
		return errors.New("label text contains control characters")
	}
	return nil
}

// ValidateNodeName validates a node name such as "P-3" or "Am-12"
func ValidateNodeName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("node name %q is invalid (expected a variant prefix, a dash and a counter)", name)
	}
	return nil
}

// ValidateStruct runs the struct-tag rules on any value
func ValidateStruct(v any) error {
	return formatValidationError(validate.Struct(v))
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Namespace()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "lt":
			return fmt.Errorf("%s: must be less than %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %v", field, param, e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
