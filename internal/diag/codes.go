package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Call resolution
	ResInfo                          Code = 3000
	ResMethodNotFound                Code = 3001
	ResMethodOverloadNotFound        Code = 3002
	ResConstructorNotFound           Code = 3003
	ResConstructorOverloadNotFound   Code = 3004
	ResMethodNotAccessible           Code = 3005
	ResProtectedInterfaceMethod      Code = 3006
	ResProtectedWrongQualifier       Code = 3007
	ResConstructorNotAccessible      Code = 3008
	ResAmbiguousMethod               Code = 3009
	ResAmbiguousConstructor          Code = 3010
	ResHiddenByEnclosing             Code = 3011
	ResFieldNotMethod                Code = 3012
	ResTypeNotMethod                 Code = 3013
	ResMethodNameMisspelled          Code = 3014
	ResMethodFoundForConstructor     Code = 3015
	ResSyntheticMethodInvocation     Code = 3016
	ResSyntheticConstructorInvoke    Code = 3017
	ResAbstractMethodViaSuper        Code = 3018
	ResUncaughtCheckedException      Code = 3019
	ResDeprecatedMethod              Code = 3020
	ResDeprecatedConstructor         Code = 3021
	ResTypeNotReference              Code = 3022
	ResInstanceMethodViaType         Code = 3023
	ResInstanceMethodInStatic        Code = 3024
	ResStaticMethodViaInstance       Code = 3025
	ResInstanceMethodInExplicitCtor  Code = 3026
	ResInheritanceScopingConflict    Code = 3027
	ResAbstractInstantiation         Code = 3028
	ResAnonymousInterfaceArgs        Code = 3029
	ResVoidArgument                  Code = 3030
	ResMissingEnclosingInstance      Code = 3031
	ResPrimitiveInstantiation        Code = 3032
	ResInterfaceSuperCall            Code = 3033
	ResUnresolvedSignature           Code = 3034
	ResPendingLocalConstructor       Code = 3035
	ResDuplicateCapture              Code = 3036
	ResUnknownLocal                  Code = 3037
	ResObjectSuperCall               Code = 3038

	IOLoadFileError Code = 4001

	// Fixture and configuration problems
	PrjInfo            Code = 5000
	PrjUnknownType     Code = 5001
	PrjBadTypeExpr     Code = 5002
	PrjDuplicateClass  Code = 5003
	PrjBadStep         Code = 5004
	PrjUnknownSite     Code = 5005
	PrjBadOption       Code = 5006
	PrjCyclicHierarchy Code = 5007
	PrjBadMember       Code = 5008

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                     "Unknown error",
		ResInfo:                         "Call resolution information",
		ResMethodNotFound:               "Method not found",
		ResMethodOverloadNotFound:       "No applicable method overload",
		ResConstructorNotFound:          "Constructor not found",
		ResConstructorOverloadNotFound:  "No applicable constructor overload",
		ResMethodNotAccessible:          "Method not accessible",
		ResProtectedInterfaceMethod:     "Protected method accessed through an interface",
		ResProtectedWrongQualifier:      "Protected method accessed through a wrong qualifier",
		ResConstructorNotAccessible:     "Constructor not accessible",
		ResAmbiguousMethod:              "Ambiguous method invocation",
		ResAmbiguousConstructor:         "Ambiguous constructor invocation",
		ResHiddenByEnclosing:            "Method hidden by an inner scope",
		ResFieldNotMethod:               "Field used as a method",
		ResTypeNotMethod:                "Type used as a method",
		ResMethodNameMisspelled:         "Misspelled method name",
		ResMethodFoundForConstructor:    "Method found where a constructor was expected",
		ResSyntheticMethodInvocation:    "Invocation of a synthetic method",
		ResSyntheticConstructorInvoke:   "Invocation of a synthetic constructor",
		ResAbstractMethodViaSuper:       "Abstract method invoked through super",
		ResUncaughtCheckedException:     "Unhandled checked exception",
		ResDeprecatedMethod:             "Use of a deprecated method",
		ResDeprecatedConstructor:        "Use of a deprecated constructor",
		ResTypeNotReference:             "Method invoked on a non-reference type",
		ResInstanceMethodViaType:        "Instance method invoked through a type name",
		ResInstanceMethodInStatic:       "Instance method invoked from a static context",
		ResStaticMethodViaInstance:      "Static method invoked through an instance",
		ResInstanceMethodInExplicitCtor: "Instance method invoked from an explicit constructor call",
		ResInheritanceScopingConflict:   "Inherited method shadows an enclosing method",
		ResAbstractInstantiation:        "Abstract type instantiated",
		ResAnonymousInterfaceArgs:       "Anonymous interface implementation takes no arguments",
		ResVoidArgument:                 "Argument of type void",
		ResMissingEnclosingInstance:     "No enclosing instance available",
		ResPrimitiveInstantiation:       "Non-class type instantiated",
		ResInterfaceSuperCall:           "Interface has no superclass constructor",
		ResUnresolvedSignature:          "Callable signature could not be resolved",
		ResPendingLocalConstructor:      "Local class constructor call still pending",
		ResDuplicateCapture:             "Local variable captured twice",
		ResUnknownLocal:                 "Captured local variable not in scope",
		ResObjectSuperCall:              "java.lang.Object has no superclass constructor",
		IOLoadFileError:                 "I/O load file error",
		PrjInfo:                         "Project information",
		PrjUnknownType:                  "Unknown type in fixture",
		PrjBadTypeExpr:                  "Malformed type expression",
		PrjDuplicateClass:               "Duplicate class declaration",
		PrjBadStep:                      "Malformed program step",
		PrjUnknownSite:                  "Reference to an unknown call site",
		PrjBadOption:                    "Invalid option value",
		PrjCyclicHierarchy:              "Cyclic class hierarchy",
		PrjBadMember:                    "Malformed class or member declaration",
		ObsInfo:                         "Observability information",
		ObsTimings:                      "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode maps an ID such as "RES3001" back to its Code.
func ParseCode(id string) (Code, bool) {
	for c := range codeDescription {
		if c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
