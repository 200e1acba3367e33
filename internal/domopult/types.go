package domopult

// ConfigurationItems is the response of GET /clients/configuration-items.
type ConfigurationItems struct {
	Items []ConfigurationItem `json:"items"`
}

// ConfigurationItem ties a housing unit to its personal account.
type ConfigurationItem struct {
	ID              int64            `json:"id"`
	PersonalAccount *PersonalAccount `json:"personalAccount"`
}

// PersonalAccount is the tenant's billing account.
type PersonalAccount struct {
	ID                int64              `json:"id"`
	Number            string             `json:"number"`
	UtilitiesBalance  float64            `json:"utilitiesBalance"`
	RepairsBalance    float64            `json:"repairsBalance"`
	IsActive          bool               `json:"isActive"`
	ConfigurationItem *AccountConfigItem `json:"configurationItem"`
}

// AccountConfigItem is the configuration item nested inside a personal account.
type AccountConfigItem struct {
	ID       int64     `json:"id"`
	Address  Address   `json:"address"`
	CIGroups []CIGroup `json:"ciGroups"`
}

// Address of the housing unit.
type Address struct {
	Location string `json:"location"`
}

// CIGroup is a configuration-item group attached to the unit.
type CIGroup struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PaymentsPage is the response of GET /personal_account/payments/{id}.
type PaymentsPage struct {
	Results []PaymentResult `json:"results"`
}

// PaymentResult is a single payment row with the account and client snapshots
// the API duplicates into every row.
type PaymentResult struct {
	ID                         int64            `json:"id"`
	TransactionalID            string           `json:"transactionalId"`
	Status                     string           `json:"status"`
	PaymentType                string           `json:"paymentType"`
	ServiceType                string           `json:"serviceType"`
	Balance                    float64          `json:"balance"`
	PaymentSum                 float64          `json:"paymentSum"`
	PaymentInsurance           float64          `json:"paymentInsurance"`
	PaymentSumWithoutInsurance float64          `json:"paymentSumWithoutInsurance"`
	CreationDate               string           `json:"creationDate"`
	CreationMethod             string           `json:"creationMethod"`
	LoginMethods               []LoginMethod    `json:"loginMethods"`
	DebtorInfo                 *DebtorInfo      `json:"debtorInfo"`
	PersonalAccount            *PersonalAccount `json:"personalAccount"`
	Client                     *Client          `json:"client"`
}

// LoginMethod is an enabled way to access the personal office.
type LoginMethod struct {
	Key string `json:"key"`
}

// DebtorInfo summarizes outstanding debt for the account.
type DebtorInfo struct {
	IsDebtor           bool    `json:"isDebtor"`
	ServiceOverallDebt float64 `json:"serviceOverallDebt"`
}

// Client is the tenant the account belongs to.
type Client struct {
	ID      int64    `json:"id"`
	Contact *Contact `json:"contact"`
}

// Contact holds the tenant's contact data and residence details.
type Contact struct {
	Name                   string       `json:"name"`
	Phone                  string       `json:"phone"`
	Emails                 []ClientMail `json:"emails"`
	AdvertisingMailing     bool         `json:"advertisingMailing"`
	BasicConfigurationItem *BasicCI     `json:"basicConfigurationItem"`
}

// ClientMail is one of the tenant's e-mail addresses.
type ClientMail struct {
	Email string `json:"email"`
}

// BasicCI describes the residence attached to the contact.
type BasicCI struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Address         Address     `json:"address"`
	Category        CICategory  `json:"category"`
	RoomType        string      `json:"roomType"`
	HasParking      bool        `json:"hasParking"`
	HasPlayground   bool        `json:"hasPlayground"`
	HasSportsGround bool        `json:"hasSportsGround"`
	MeterFlags      *MeterFlags `json:"meterFlags"`
}

// CICategory is the residence category.
type CICategory struct {
	Name string `json:"name"`
}

// MeterFlags reports which meter kinds the residence supports.
type MeterFlags struct {
	HotWaterAllowed  bool `json:"hotWaterAllowed"`
	ColdWaterAllowed bool `json:"coldWaterAllowed"`
}

// MeterEntry is one element of GET /clients/meters/for-item/{id}.
type MeterEntry struct {
	Meter Meter `json:"meter"`
}

// Meter types used by the water-meter flows.
const (
	MeterTypeColdWater = "ColdWater"
	MeterTypeHotWater  = "HotWater"
)

// Meter is a metering device with its last accepted reading.
type Meter struct {
	ID        int64       `json:"id"`
	Type      string      `json:"type"`
	Number    string      `json:"number"`
	LastValue *MeterValue `json:"lastValue"`
}

// LastReading returns the display value of the last accepted total, if known.
func (m Meter) LastReading() string {
	if m.LastValue == nil {
		return ""
	}
	return m.LastValue.Total.DisplayValue
}

// MeterValue wraps the totals of a submitted reading.
type MeterValue struct {
	Total MeterTotal `json:"total"`
}

// MeterTotal carries the display form of a reading.
type MeterTotal struct {
	DisplayValue string `json:"displayValue"`
}
