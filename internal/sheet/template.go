package sheet

import "dealsheet/internal/domain"

// NA marks values the CRM fills in on its own.
const NA = "N/A"

// Row is one line of the template: its label, where the value comes from,
// and a comment that never depends on the data.
type Row struct {
	Label string
	// Key is read from the record being rendered (the deal or a placement).
	Key string
	// Fallback is read from the deal when Key yields nothing.
	Fallback string
	Default  string
	Comment  string
}

// Value resolves the row against record and its parent deal.
func (r Row) Value(record, deal domain.Fields) string {
	var own, inherited string
	if r.Key != "" {
		own = record.Text(r.Key)
	}
	if r.Fallback != "" {
		inherited = deal.Text(r.Fallback)
	}
	return Resolve(own, inherited, r.Default)
}

// Resolve returns the first non-empty of own and fallback, else def.
func Resolve(own, fallback, def string) string {
	if own != "" {
		return own
	}
	if fallback != "" {
		return fallback
	}
	return def
}

// DealHeader captions the deal block.
var DealHeader = [3]string{"Deal Creation Form Fields", "Deal Letter Agreement Fields", "Comments"}

// PlacementHeader captions each placement block.
var PlacementHeader = [3]string{"Placement Creation Form Fields", "Deal Letter Agreement Fields", "Comments"}

// DealRows is the fixed 22-row deal block, in CRM import order.
var DealRows = []Row{
	{Label: "Deal Name", Default: NA, Comment: "Need to fill by User."},
	{Label: "Deal Type", Key: "deal_type", Comment: "Should take Agency or Direct based on Agency field"},
	{Label: "Advertiser Name", Key: "advertiser_name"},
	{Label: "Client Name", Default: NA, Comment: "Will auto-reflect, based on Advertiser Name"},
	{Label: "Brand Name", Key: "brand_name", Comment: "If empty in Sheet, then user needs to select"},
	{Label: "Product Category", Key: "product_category", Comment: "If empty in Sheet, then user needs to select"},
	{Label: "Agency Name", Key: "agency_name"},
	{Label: "Tournament Name", Key: "tournament_name"},
	{Label: "Sales Person", Key: "sales_person", Comment: "From Star India Contact Person"},
	{Label: "Plant", Default: NA, Comment: "Will be auto populated based on Sales Person"},
	{Label: "Zone", Default: NA, Comment: "Will be auto populated based on Sales Person"},
	{Label: "Sales Group", Default: NA, Comment: "Need to fill by User."},
	{Label: "Start Date", Key: "start_date"},
	{Label: "End Date", Key: "end_date"},
	{Label: "Deal Currency", Default: NA, Comment: "Need to fill by User."},
	{Label: "Execution Currency", Key: "execution_currency", Default: "INR", Comment: "By default INR in YuktaOne"},
	{Label: "Currency Conversion Rate", Default: NA, Comment: "Need to fill by User if Deal Currency is other than INR."},
	{Label: "Booked Revenue", Key: "booked_revenue"},
	{Label: "Discount Type", Default: NA, Comment: "Disable"},
	{Label: "Discount", Default: NA, Comment: "Disable"},
	{Label: "Booked Revenue in Execution Currency After Discount", Default: NA, Comment: "Auto-populated field."},
	{Label: "Booked Revenue in Deal Currency After Discount", Default: NA, Comment: "Auto-populated field."},
}

// PlacementRows is the fixed 30-row block emitted for every placement.
// Total Quantity and Booked Revenue are always left to the CRM even though
// the extraction schema carries both keys.
var PlacementRows = []Row{
	{Label: "Billing Type", Key: "billing_type", Default: "Standard", Comment: "Standard by default"},
	{Label: "Ad Server Name", Default: NA, Comment: "Based on Ad Format/Ad Assets"},
	{Label: "Start Date", Key: "start_date", Fallback: "start_date"},
	{Label: "End Date", Key: "end_date", Fallback: "end_date"},
	{Label: "Tournament Name", Key: "tournament_name", Fallback: "tournament_name", Comment: "Auto-populated based on Deal"},
	{Label: "Buy Type", Key: "buy_type", Comment: "Need to select by User."},
	{Label: "Ad Format", Key: "ad_format"},
	{Label: "Ad Duration", Key: "ad_duration"},
	{Label: "Content Type", Key: "content_type"},
	{Label: "Spot Type", Key: "spot_type", Default: "Original", Comment: "Original by default"},
	{Label: "Platform", Key: "platform"},
	{Label: "Match", Key: "match", Comment: "Need to select by User."},
	{Label: "Creative ID", Default: NA},
	{Label: "RO Number", Default: NA, Comment: "Need to select by User."},
	{Label: "Stream", Default: NA, Comment: "Need to select by User."},
	{Label: "Material Number", Default: NA, Comment: "Need to select by User."},
	{Label: "Booked Quantity", Key: "booked_quantity"},
	{Label: "Bonus Quantity", Default: NA},
	{Label: "Total Quantity", Default: NA, Comment: "Auto-populated field."},
	{Label: "Rate", Key: "rate"},
	{Label: "Booked Revenue", Default: NA, Comment: "Auto-populated field."},
	{Label: "Campaign Name", Default: NA},
	{Label: "Targeting", Key: "targeting"},
	{Label: "Campaign Manager", Default: NA},
	{Label: "Client", Fallback: "advertiser_name", Comment: "Auto-populated based on Deal"},
	{Label: "Product Category", Fallback: "product_category", Comment: "Auto-populated based on Deal"},
	{Label: "Brand Name", Key: "brand_name", Fallback: "brand_name"},
	{Label: "Targeting Comments", Default: NA},
	{Label: "Placement Comments", Default: NA},
	{Label: "Placement Name", Default: NA, Comment: "Auto-populated field."},
}

// LineKind tells the writer how to style a line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineHeader
	LineField
)

// Line is one spreadsheet row of the rendered layout.
type Line struct {
	Kind  LineKind
	Cells [3]string
}

// dealGap is the number of blank rows between the deal and the first placement.
const dealGap = 2

// Plan lays out a deal letter as spreadsheet lines, top to bottom. It is a
// pure function of the letter and the template tables.
func Plan(letter *domain.DealLetter) []Line {
	deal := domain.Fields{}
	var placements []domain.Fields
	if letter != nil {
		if letter.Deal != nil {
			deal = letter.Deal
		}
		placements = letter.Placements
	}

	lines := make([]Line, 0, 1+len(DealRows)+len(placements)*(2+len(PlacementRows))+dealGap)
	lines = append(lines, Line{Kind: LineHeader, Cells: DealHeader})
	for _, r := range DealRows {
		lines = append(lines, Line{Kind: LineField, Cells: [3]string{r.Label, r.Value(deal, deal), r.Comment}})
	}
	if len(placements) == 0 {
		return lines
	}

	for i := 0; i < dealGap; i++ {
		lines = append(lines, Line{Kind: LineBlank})
	}
	for i, p := range placements {
		if p == nil {
			p = domain.Fields{}
		}
		lines = append(lines, Line{Kind: LineHeader, Cells: PlacementHeader})
		for _, r := range PlacementRows {
			lines = append(lines, Line{Kind: LineField, Cells: [3]string{r.Label, r.Value(p, deal), r.Comment}})
		}
		if i < len(placements)-1 {
			lines = append(lines, Line{Kind: LineBlank})
		}
	}
	return lines
}
