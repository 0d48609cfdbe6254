package ir

// Class is an opaque handle to a declared class or interface. The engine
// never inspects a Class beyond its name and what ClassHierarchy reports
// about it; identity is whatever the loader chooses (pointer or value).
type Class interface {
	Name() string
}

// ClassHierarchy is the read-only class-hierarchy surface CHA consumes
// (spec §4.5, §6): direct-subclasses, direct-subinterfaces,
// direct-implementors, super-class, declared-method-by-subsignature,
// is-abstract, is-interface.
type ClassHierarchy interface {
	ClassByName(name string) (Class, bool)

	DirectSubclasses(c Class) []Class
	DirectSubinterfaces(c Class) []Class
	DirectImplementors(c Class) []Class

	SuperClass(c Class) (Class, bool)
	DeclaredMethod(c Class, subsignature string) (Method, bool)

	IsAbstract(c Class) bool
	IsInterface(c Class) bool
}
