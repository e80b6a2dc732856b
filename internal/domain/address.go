package domain

// Fields that may be edited through the address helpers.
const (
	AddressFieldEmail    = "email"
	AddressFieldPhone    = "phone"
	AddressFieldFax      = "fax"
	AddressFieldPrimary  = "is_primary_address"
	AddressFieldShipping = "is_shipping_address"
)

// AddressSearchLimit caps search_addresses results.
const AddressSearchLimit = 20
