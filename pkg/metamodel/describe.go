package metamodel

import (
	"github.com/matzehuels/graphwire/pkg/model"
)

// FromPackage returns the definition of p. Building the result yields an
// equivalent package; within each class, attributes move ahead of references.
func FromPackage(p *model.Package) *Definition {
	def := &Definition{Name: p.Name(), NsURI: p.NsURI(), Location: p.Location()}
	for _, c := range p.Classifiers() {
		switch c := c.(type) {
		case *model.DataType:
			def.DataTypes = append(def.DataTypes, DataTypeDef{Name: c.Name(), Kind: c.Kind().String()})
		case *model.Enum:
			ed := EnumDef{Name: c.Name()}
			for _, l := range c.Literals() {
				ld := LiteralDef{Name: l.Name, Value: l.Value}
				if l.Literal != l.Name {
					ld.Literal = l.Literal
				}
				ed.Literals = append(ed.Literals, ld)
			}
			def.Enums = append(def.Enums, ed)
		case *model.Class:
			def.Classes = append(def.Classes, describeClass(c))
		}
	}
	return def
}

func describeClass(c *model.Class) ClassDef {
	cd := ClassDef{Name: c.Name(), Abstract: c.Abstract()}
	for _, s := range c.SuperTypes() {
		cd.SuperTypes = append(cd.SuperTypes, s.Name())
	}
	for _, f := range c.OwnFeatures() {
		if f.IsReference() {
			rd := ReferenceDef{
				Name:           f.Name(),
				Type:           f.ReferenceType().Name(),
				Many:           f.IsMany(),
				Containment:    f.IsContainment(),
				ResolveProxies: f.IsResolveProxies(),
				Transient:      f.IsTransient(),
			}
			if op := f.Opposite(); op != nil {
				rd.Opposite = op.Name()
			}
			cd.References = append(cd.References, rd)
			continue
		}
		dt := f.DataType()
		ad := AttributeDef{
			Name:      f.Name(),
			Type:      dt.Name(),
			Many:      f.IsMany() && !f.IsFeatureMap(),
			Transient: f.IsTransient(),
		}
		if v := f.DefaultValue(); !f.IsMany() && !model.ValuesEqual(v, dt.DefaultValue()) {
			ad.Default, _ = dt.ConvertToString(v)
		}
		cd.Attributes = append(cd.Attributes, ad)
	}
	return cd
}
