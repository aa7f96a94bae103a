package importer

// vendorNames maps known DSD vendor codes to display names. Codes missing
// from this table are autovivified with the code itself as the name and can
// be renamed later through the vendor API.
var vendorNames = map[string]string{
	"33CRAF": "33 Craft Spirits",
	"7UP":    "7UP Bottling Company",
	"AC FOO": "AC Food",
	"AM BRE": "American Breads",
	"AM CRE": "American Creameries",
	"ANIMSU": "Animas Universal",
	"BIMBO":  "Bimbo Bakeries",
	"BRKTHR": "Breakthrough Beverages",
	"BUD":    "Anheuser-Busch/Budweiser",
	"CALSUN": "California Sun Dry",
	"CAMPOS": "Campos Brothers",
	"CAZODO": "Casa Zodo",
	"CLASSC": "Classic Foods",
	"COKE":   "Coca-Cola Bottling",
	"CRYSTL": "Crystal Creamery",
	"DONSAL": "Don Salvador",
	"EL KOR": "El Kora",
	"ELMEXI": "El Mexicano",
	"FERNDS": "Fernandez Foods",
	"FRITO":  "Frito-Lay Inc.",
	"GALLO":  "E&J Gallo Winery",
	"GIBSON": "Gibson Wine Company",
	"GLDRSH": "Goldenrod Farms",
	"GOYA":   "Goya Foods",
	"GRANDA": "Granada Foods",
	"GVALLY": "Gold Valley",
	"JACENT": "Jacent Strategic Merch.",
	"JGI":    "JGI Foods",
	"JOSEPH": "Joseph Farms",
	"LAPERL": "La Perla",
	"LAROSA": "La Rosa",
	"LATAPA": "La Tapatia",
	"LATORT": "La Tortilla Factory",
	"MARTIN": "Martins Famous Pastry",
	"MCKEE":  "McKee Foods/Little Debbie",
	"MERCLT": "Mercado Latino",
	"MILLER": "Miller Brewing/MillerCoors",
	"MINISN": "Mini Snacks",
	"MISSN":  "Mission Foods",
	"MONTER": "Monterey Mushrooms",
	"NABSCO": "Nabisco/Mondelez",
	"NESTLE": "Nestle USA",
	"NOBLE":  "Noble Juice",
	"NORCAL": "NorCal Beverage",
	"NUCAL":  "NuCal Foods",
	"NUTCH":  "Nutchel Foods",
	"OLIVET": "Oliveto Foods",
	"OLIVRA": "Olivera Foods",
	"PEERLE": "Peerless Coffee",
	"PEETS":  "Peets Coffee",
	"PEPES":  "Pepes Foods",
	"PEPSI":  "PepsiCo Beverages",
	"PFARMS": "Pacific Farms",
	"PHOENI": "Phoenix Foods",
	"PRDCRS": "Producers Dairy",
	"REDBLL": "Red Bull North America",
	"REYNA":  "Reyna Foods",
	"RNDC":   "Republic National Dist.",
	"ROPAME": "Ropa Americana",
	"ROSABR": "Rosa Brand",
	"ROSIE":  "Rosie Foods",
	"RUGDO":  "Rugido Foods",
	"SANTOS": "Santos Foods",
	"SNYDER": "Snyders-Lance",
	"SOPAC":  "So-Pac Distributing",
	"STHRN":  "Southern Wine & Spirits",
	"T&S":    "T&S Foods",
	"THAL G": "Thal G Foods",
	"TLTECA": "Tolteca Foods",
	"TONYS":  "Tonys Fine Foods",
	"TROPIC": "Tropical Foods",
	"USTRAD": "US Trading",
	"VALEYW": "Valley Wholesale",
	"WONDER": "Wonder/Flowers Baking",
}

// VendorName resolves a vendor code to its display name, falling back to the
// code itself.
func VendorName(code string) string {
	if name, ok := vendorNames[code]; ok {
		return name
	}
	return code
}
