// SPDX-License-Identifier: MIT

package scia

// Freedom is the constraint of a single support degree of freedom.
type Freedom string

const (
	FreedomFree     Freedom = "free"
	FreedomFlexible Freedom = "flexible"
	FreedomRigid    Freedom = "rigid"
)

// IsValid reports whether f is a known freedom value.
func (f Freedom) IsValid() bool {
	switch f {
	case FreedomFree, FreedomFlexible, FreedomRigid:
		return true
	}
	return false
}

// CSys selects the coordinate system a support or load is expressed in.
type CSys string

const (
	CSysGlobal CSys = "global"
	CSysLocal  CSys = "local"
)

// IsValid reports whether c is a known coordinate system.
func (c CSys) IsValid() bool {
	return c == CSysGlobal || c == CSysLocal
}

// SpringType is the point-support spring model.
type SpringType string

const (
	SpringStandard SpringType = "standard"
)

// IsValid reports whether s is a known spring type.
func (s SpringType) IsValid() bool { return s == SpringStandard }

// LoadOption classifies a load group.
type LoadOption string

const (
	LoadOptionPermanent LoadOption = "permanent"
	LoadOptionVariable  LoadOption = "variable"
)

// IsValid reports whether o is a known load option.
func (o LoadOption) IsValid() bool {
	return o == LoadOptionPermanent || o == LoadOptionVariable
}

// RelationOption is the combination relation of a load group.
type RelationOption string

const (
	RelationStandard  RelationOption = "standard"
	RelationExclusive RelationOption = "exclusive"
	RelationTogether  RelationOption = "together"
)

// IsValid reports whether r is a known relation option.
func (r RelationOption) IsValid() bool {
	switch r {
	case RelationStandard, RelationExclusive, RelationTogether:
		return true
	}
	return false
}

// LoadTypeOption is the Eurocode load category of a load group.
type LoadTypeOption string

const (
	LoadTypeCatG LoadTypeOption = "cat_g"
)

// IsValid reports whether t is a known load type option.
func (t LoadTypeOption) IsValid() bool { return t == LoadTypeCatG }

// VariableLoadType distinguishes static and dynamic variable load cases.
type VariableLoadType string

const (
	VariableLoadStatic VariableLoadType = "static"
)

// IsValid reports whether t is a known variable load type.
func (t VariableLoadType) IsValid() bool { return t == VariableLoadStatic }

// Specification refines a load case type.
type Specification string

const (
	SpecificationStandard Specification = "standard"
)

// IsValid reports whether s is a known specification.
func (s Specification) IsValid() bool { return s == SpecificationStandard }

// Duration is the action duration of a variable load case.
type Duration string

const (
	DurationShort Duration = "short"
	DurationLong  Duration = "long"
)

// IsValid reports whether d is a known duration.
func (d Duration) IsValid() bool { return d == DurationShort || d == DurationLong }

// CombinationKind selects the load combination envelope.
type CombinationKind string

const (
	CombinationEnvelopeServiceability CombinationKind = "envelope_serviceability"
	CombinationEnvelopeUltimate       CombinationKind = "envelope_ultimate"
)

// IsValid reports whether k is a known combination kind.
func (k CombinationKind) IsValid() bool {
	return k == CombinationEnvelopeServiceability || k == CombinationEnvelopeUltimate
}

// LoadDirection is the axis of a surface load.
type LoadDirection string

const (
	DirectionX LoadDirection = "x"
	DirectionY LoadDirection = "y"
	DirectionZ LoadDirection = "z"
)

// IsValid reports whether d is a known direction.
func (d LoadDirection) IsValid() bool {
	return d == DirectionX || d == DirectionY || d == DirectionZ
}

// LoadType distinguishes force and pressure surface loads.
type LoadType string

const (
	LoadTypeForce LoadType = "force"
)

// IsValid reports whether t is a known load type.
func (t LoadType) IsValid() bool { return t == LoadTypeForce }

// LoadLocation is the distribution reference of a surface load.
type LoadLocation string

const (
	LocationLength     LoadLocation = "length"
	LocationProjection LoadLocation = "projection"
)

// IsValid reports whether l is a known location.
func (l LoadLocation) IsValid() bool {
	return l == LocationLength || l == LocationProjection
}
