package codec

import (
	"strconv"

	"github.com/matzehuels/graphwire/pkg/model"
)

// Kind is the closed set of feature shapes the codec distinguishes. Every
// encode and decode dispatch switches over all kinds.
type Kind uint8

const (
	KindContainer Kind = iota
	KindContainerProxy
	KindObject
	KindObjectProxy
	KindObjectList
	KindObjectListProxy
	KindContainment
	KindContainmentProxy
	KindContainmentList
	KindContainmentListProxy
	KindBool
	KindByte
	KindChar
	KindDouble
	KindFloat
	KindInt
	KindLong
	KindShort
	KindString
	KindDate
	KindEnum
	KindData
	KindDataList
	KindFeatureMap
)

var kindNames = [...]string{
	KindContainer:            "container",
	KindContainerProxy:       "container-proxy-resolving",
	KindObject:               "reference",
	KindObjectProxy:          "reference-proxy-resolving",
	KindObjectList:           "reference-list",
	KindObjectListProxy:      "reference-list-proxy-resolving",
	KindContainment:          "containment",
	KindContainmentProxy:     "containment-proxy-resolving",
	KindContainmentList:      "containment-list",
	KindContainmentListProxy: "containment-list-proxy-resolving",
	KindBool:                 "boolean",
	KindByte:                 "byte",
	KindChar:                 "char",
	KindDouble:               "double",
	KindFloat:                "float",
	KindInt:                  "int",
	KindLong:                 "long",
	KindShort:                "short",
	KindString:               "string",
	KindDate:                 "date",
	KindEnum:                 "enumerator",
	KindData:                 "data",
	KindDataList:             "data-list",
	KindFeatureMap:           "feature-map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsReference reports whether values of this kind are objects.
func (k Kind) IsReference() bool { return k <= KindContainmentListProxy }

// IsList reports whether values of this kind are written as arrays of
// objects.
func (k Kind) IsList() bool {
	switch k {
	case KindObjectList, KindObjectListProxy, KindContainmentList, KindContainmentListProxy:
		return true
	}
	return false
}

// KindOf derives the kind of a feature.
func KindOf(f *model.Feature) Kind {
	switch {
	case f.IsContainer():
		if f.IsResolveProxies() {
			return KindContainerProxy
		}
		return KindContainer
	case f.IsContainment():
		switch {
		case f.IsMany() && f.IsResolveProxies():
			return KindContainmentListProxy
		case f.IsMany():
			return KindContainmentList
		case f.IsResolveProxies():
			return KindContainmentProxy
		}
		return KindContainment
	case f.IsReference():
		switch {
		case f.IsMany() && f.IsResolveProxies():
			return KindObjectListProxy
		case f.IsMany():
			return KindObjectList
		case f.IsResolveProxies():
			return KindObjectProxy
		}
		return KindObject
	case f.IsFeatureMap():
		return KindFeatureMap
	case f.IsMany():
		return KindDataList
	}

	switch dt := f.DataType().(type) {
	case *model.Enum:
		return KindEnum
	case *model.DataType:
		switch dt.Kind() {
		case model.ValueBool:
			return KindBool
		case model.ValueByte:
			return KindByte
		case model.ValueChar:
			return KindChar
		case model.ValueDouble:
			return KindDouble
		case model.ValueFloat:
			return KindFloat
		case model.ValueInt:
			return KindInt
		case model.ValueLong:
			return KindLong
		case model.ValueShort:
			return KindShort
		case model.ValueString:
			return KindString
		case model.ValueDate:
			return KindDate
		}
	}
	return KindData
}

// checkMode selects how the encoder decides between inlining an object and
// writing a reference to another document.
type checkMode uint8

const (
	checkNothing checkMode = iota
	checkDirectResource
	checkResource
	checkContainer
)

// check returns the mode used for targets of a reference kind.
func (k Kind) check() checkMode {
	switch k {
	case KindContainmentProxy, KindContainmentListProxy:
		return checkDirectResource
	case KindObjectProxy, KindObjectListProxy, KindContainerProxy:
		return checkResource
	}
	return checkNothing
}
