package provider

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"payconnect/internal/amount"
	"payconnect/internal/domain/payment"
)

//go:embed catalog.yaml
var catalogYAML []byte

// PaymentMethodInfo lists what a connector can do with one payment method.
type PaymentMethodInfo struct {
	Method         payment.PaymentMethod   `yaml:"method" json:"method"`
	Flows          []Flow                  `yaml:"flows" json:"flows"`
	CaptureMethods []payment.CaptureMethod `yaml:"capture_methods" json:"capture_methods"`
}

// ConnectorInfo is the static description of a connector.
type ConnectorInfo struct {
	Kind              ConnectorKind       `yaml:"kind" json:"kind"`
	DisplayName       string              `yaml:"display_name" json:"display_name"`
	Description       string              `yaml:"description" json:"description"`
	Category          string              `yaml:"category" json:"category"`
	IntegrationStatus string              `yaml:"integration_status" json:"integration_status"`
	SandboxURL        string              `yaml:"sandbox_url" json:"-"`
	AmountUnit        amount.Unit         `yaml:"amount_unit" json:"amount_unit"`
	Currencies        []payment.Currency  `yaml:"currencies" json:"currencies"`
	PaymentMethods    []PaymentMethodInfo `yaml:"payment_methods" json:"payment_methods"`
}

// Converter builds the amount converter the connector expects. An empty
// currency list accepts every known currency.
func (i ConnectorInfo) Converter() *amount.Converter {
	return amount.NewConverter(i.AmountUnit, i.Currencies...)
}

// SupportsMethod reports whether method is listed for flow.
func (i ConnectorInfo) SupportsMethod(method payment.PaymentMethod, flow Flow) bool {
	for _, pm := range i.PaymentMethods {
		if pm.Method != method {
			continue
		}
		for _, f := range pm.Flows {
			if f == flow {
				return true
			}
		}
	}
	return false
}

// Catalog is the immutable connector description table.
type Catalog struct {
	Connectors []ConnectorInfo `yaml:"connectors"`
}

// LoadCatalog parses the embedded catalogue.
func LoadCatalog() (Catalog, error) { return ParseCatalog(catalogYAML) }

// ParseCatalog decodes and validates a catalogue document.
func ParseCatalog(b []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse connector catalog: %w", err)
	}
	seen := make(map[ConnectorKind]bool, len(c.Connectors))
	for _, info := range c.Connectors {
		if info.Kind == "" {
			return Catalog{}, fmt.Errorf("connector catalog entry without kind")
		}
		if seen[info.Kind] {
			return Catalog{}, fmt.Errorf("connector %s listed twice", info.Kind)
		}
		seen[info.Kind] = true
		if info.AmountUnit != amount.MajorUnit && info.AmountUnit != amount.MinorUnit {
			return Catalog{}, fmt.Errorf("connector %s: unknown amount unit %q", info.Kind, info.AmountUnit)
		}
		for _, cur := range info.Currencies {
			if _, ok := cur.Exponent(); !ok {
				return Catalog{}, fmt.Errorf("connector %s: unknown currency %s", info.Kind, cur)
			}
		}
	}
	return c, nil
}

// Lookup finds the entry for kind.
func (c Catalog) Lookup(kind ConnectorKind) (ConnectorInfo, bool) {
	for _, info := range c.Connectors {
		if info.Kind == kind {
			return info, true
		}
	}
	return ConnectorInfo{}, false
}
