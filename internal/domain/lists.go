package domain

// Categories offered by the post form and the catalog filter.
var Categories = []string{
	"Badiiy adabiyot",
	"Tarixiy roman",
	"Bolalar adabiyoti",
	"Ilmiy",
	"Darslik",
	"Boshqa",
}

var Cities = []string{
	"Toshkent",
	"Samarqand",
	"Buxoro",
	"Farg'ona",
	"Andijon",
	"Namangan",
	"Qo'qon",
	"Xiva",
}

func IsCategory(s string) bool { return contains(Categories, s) }

func IsCity(s string) bool { return contains(Cities, s) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
