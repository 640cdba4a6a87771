package metamodel

import (
	"github.com/matzehuels/graphwire/pkg/errors"
	"github.com/matzehuels/graphwire/pkg/model"
)

func schemaError(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidSchema, format, args...)
}

// Build creates the package described by def.
func Build(def *Definition) (*model.Package, error) {
	if err := errors.ValidateName(def.Name); err != nil {
		return nil, err
	}
	if err := errors.ValidateNsURI(def.NsURI); err != nil {
		return nil, err
	}
	p := model.NewPackage(def.Name, def.NsURI)
	if def.Location != "" {
		p.SetLocation(def.Location)
	}

	declare := func(name string) error {
		if err := errors.ValidateName(name); err != nil {
			return err
		}
		if p.Classifier(name) != nil {
			return schemaError("classifier %q declared twice", name)
		}
		return nil
	}

	for _, dt := range def.DataTypes {
		if err := declare(dt.Name); err != nil {
			return nil, err
		}
		kind, ok := model.ParseValueKind(dt.Kind)
		if !ok {
			return nil, schemaError("data type %q: unknown kind %q", dt.Name, dt.Kind)
		}
		p.NewDataType(dt.Name, kind)
	}

	for _, ed := range def.Enums {
		if err := declare(ed.Name); err != nil {
			return nil, err
		}
		if err := checkLiterals(ed); err != nil {
			return nil, err
		}
		lits := make([]model.EnumLiteral, len(ed.Literals))
		for i, l := range ed.Literals {
			lits[i] = model.EnumLiteral{Name: l.Name, Value: l.Value, Literal: l.Literal}
		}
		p.NewEnum(ed.Name, lits...)
	}

	// Classes are created up front so that references and supertypes may
	// point forward.
	classes := make([]*model.Class, len(def.Classes))
	for i, cd := range def.Classes {
		if err := declare(cd.Name); err != nil {
			return nil, err
		}
		classes[i] = p.NewClass(cd.Name).SetAbstract(cd.Abstract)
	}
	for i, cd := range def.Classes {
		for _, name := range cd.SuperTypes {
			super := p.Class(name)
			if super == nil {
				return nil, schemaError("class %q: unknown supertype %q", cd.Name, name)
			}
			if classes[i].IsSuperTypeOf(super) {
				return nil, schemaError("class %q: inheriting from %q creates a cycle", cd.Name, name)
			}
			classes[i].AddSuperType(super)
		}
	}

	for i, cd := range def.Classes {
		if err := addFeatures(p, classes[i], cd); err != nil {
			return nil, err
		}
	}
	for i, cd := range def.Classes {
		if err := linkOpposites(p, classes[i], cd); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func checkLiterals(ed EnumDef) error {
	if len(ed.Literals) == 0 {
		return schemaError("enum %q has no literals", ed.Name)
	}
	names := make(map[string]bool)
	values := make(map[int]bool)
	for _, l := range ed.Literals {
		if err := errors.ValidateName(l.Name); err != nil {
			return err
		}
		if names[l.Name] {
			return schemaError("enum %q: literal %q declared twice", ed.Name, l.Name)
		}
		if values[l.Value] {
			return schemaError("enum %q: value %d used twice", ed.Name, l.Value)
		}
		names[l.Name], values[l.Value] = true, true
	}
	return nil
}

// dataType resolves an attribute type name.
func dataType(p *model.Package, name string) (model.DataClassifier, error) {
	c := p.Classifier(name)
	if c == nil {
		c = model.Builtins.Classifier(name)
	}
	if c == nil {
		return nil, schemaError("unknown type %q", name)
	}
	dt, ok := c.(model.DataClassifier)
	if !ok {
		return nil, schemaError("%q is a class, not a data type", name)
	}
	return dt, nil
}

func addFeatures(p *model.Package, c *model.Class, cd ClassDef) error {
	seen := make(map[string]bool)
	declare := func(name string) error {
		if err := errors.ValidateName(name); err != nil {
			return err
		}
		if seen[name] || c.FeatureByName(name) != nil {
			return schemaError("class %q: feature %q declared twice", cd.Name, name)
		}
		seen[name] = true
		return nil
	}

	for _, ad := range cd.Attributes {
		if err := declare(ad.Name); err != nil {
			return err
		}
		dt, err := dataType(p, ad.Type)
		if err != nil {
			return schemaError("class %q: attribute %q: %v", cd.Name, ad.Name, errors.UserMessage(err))
		}
		opts := model.FeatureOptions{Many: ad.Many, Transient: ad.Transient}
		if ad.Default != "" {
			v, err := dt.CreateFromString(ad.Default)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidSchema, err, "class %q: attribute %q: bad default", cd.Name, ad.Name)
			}
			opts.Default = v
		}
		c.AddAttribute(ad.Name, dt, opts)
	}

	for _, rd := range cd.References {
		if err := declare(rd.Name); err != nil {
			return err
		}
		target := p.Class(rd.Type)
		if target == nil {
			return schemaError("class %q: reference %q: unknown class %q", cd.Name, rd.Name, rd.Type)
		}
		c.AddReference(rd.Name, target, model.FeatureOptions{
			Many:           rd.Many,
			Containment:    rd.Containment,
			ResolveProxies: rd.ResolveProxies,
			Transient:      rd.Transient,
		})
	}
	return nil
}

func linkOpposites(p *model.Package, c *model.Class, cd ClassDef) error {
	for _, rd := range cd.References {
		if rd.Opposite == "" {
			continue
		}
		f := c.FeatureByName(rd.Name)
		op := f.ReferenceType().FeatureByName(rd.Opposite)
		if op == nil || !op.IsReference() {
			return schemaError("class %q: reference %q: opposite %q is not a reference of %q",
				cd.Name, rd.Name, rd.Opposite, rd.Type)
		}
		if f.Opposite() == op {
			continue
		}
		if f.Opposite() != nil || op.Opposite() != nil && op.Opposite() != f {
			return schemaError("class %q: reference %q: conflicting opposites", cd.Name, rd.Name)
		}
		if err := model.SetOpposites(f, op); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSchema, err, "class %q: reference %q", cd.Name, rd.Name)
		}
	}
	return nil
}
