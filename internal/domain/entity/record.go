package entity

// ProvisionedRecord is a TXT record this tool created at the provider. It is
// journaled to disk as soon as the provider returns an ID so a crashed run
// can be cleaned up later.
type ProvisionedRecord struct {
	Zone     string `yaml:"zone"`
	RecordID string `yaml:"record_id"`
	Name     string `yaml:"name"`
	Value    string `yaml:"value"`
}

// Key identifies a record within one journal.
func (r ProvisionedRecord) Key() string {
	return r.Zone + "/" + r.RecordID
}
