package native

// elementSymbols is indexed by Z-1.
var elementSymbols = [...]string{
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
}

// NumberElements is the size of the element abundance tables.
const NumberElements = len(elementSymbols)
