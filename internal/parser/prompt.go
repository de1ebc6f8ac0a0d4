package parser

// Schema is the target JSON shape embedded in the system prompt. Downstream
// rendering depends on these key names.
const Schema = `{
  "deal": {
    "deal_name": null,
    "deal_type": "",
    "advertiser_name": "",
    "client_name": null,
    "brand_name": "",
    "product_category": "",
    "agency_name": "",
    "tournament_name": "",
    "sales_person": "",
    "plant": null,
    "zone": null,
    "sales_group": null,
    "start_date": "",
    "end_date": "",
    "deal_currency": null,
    "execution_currency": "INR",
    "currency_conversion_rate": null,
    "booked_revenue": "",
    "discount_type": null,
    "discount": null,
    "booked_revenue_execution_currency_after_discount": null,
    "booked_revenue_deal_currency_after_discount": null
  },
  "placements": [
    {
      "billing_type": "Standard",
      "ad_server_name": null,
      "start_date": "",
      "end_date": "",
      "tournament_name": "",
      "buy_type": null,
      "ad_format": "",
      "ad_duration": "",
      "content_type": "",
      "spot_type": "Original",
      "platform": "",
      "match": "",
      "creative_id": null,
      "ro_number": null,
      "stream": null,
      "material_number": null,
      "booked_quantity": "",
      "bonus_quantity": null,
      "total_quantity": null,
      "rate": "",
      "booked_revenue": null,
      "campaign_name": null,
      "targeting": "",
      "campaign_manager": null,
      "client": null,
      "product_category": null,
      "brand_name": "",
      "targeting_comments": null,
      "placement_comments": null,
      "placement_name": null
    }
  ]
}`

// SystemPrompt is the instruction set sent with every deal letter.
const SystemPrompt = `You are a document data extraction AI for advertising Deal Letters and Release Orders. Extract structured data for YuktaOne system.

EXTRACTION RULES:
1. Extract data EXACTLY as it appears in the document
2. For deal_type: Set "Agency" if agency name is present and not "Direct", otherwise set "Direct"
3. advertiser_name: Full legal name including suffix (Ltd., Pvt. Ltd., etc.)
4. agency_name: Full legal name including suffix, or empty if direct client
5. tournament_name: Extract from "ADVERTISING – SPOT BOOKING" section or document title
6. sales_person: Look for "Contact Person" under Star India Private Limited
7. start_date and end_date: Extract from "TERM OF THE AGREEMENT" section, format as YYYY-MM-DD
8. booked_revenue: Extract "Total Consideration" from CONSIDERATION section (numeric only)
9. For placements - extract each line item from "ADVERTISING – SPOT BOOKING" table:
   - ad_format: e.g., "Live + PPL", "Mid Roll", "Pre Roll"
   - ad_duration: Duration in seconds
   - content_type: e.g., "Live", "VOD", "Highlights"
   - platform: e.g., "JioHotstar - HHWeb", "JioHotstar - CTV"
   - match: Number of matches or match details
   - booked_quantity: Impressions or spots booked
   - rate: Unit rate/CPM
   - targeting: Geographic or demographic targeting
   - brand_name: Brand being advertised
10. If a field is not found, use null
11. Numbers must be numeric (remove commas, currency symbols)
12. Return ONLY valid JSON

OUTPUT SCHEMA:
` + Schema + `

Return ONLY the JSON object, nothing else.`

// userPreamble precedes the document text in the user message.
const userPreamble = "Extract deal and placement data from this advertising document:\n\n"

// BuildUserMessage returns the user payload for a document's text.
func BuildUserMessage(text string) string {
	return userPreamble + text
}
