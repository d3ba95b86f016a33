package webhook

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://nexus.local/schemas/"

const (
	schemaEnvelope     = "envelope.json"
	schemaUser         = "user.json"
	schemaDeleted      = "deleted_object.json"
	schemaOrganization = "organization.json"
	schemaMembership   = "organization_membership.json"
	schemaInvitation   = "organization_invitation.json"
)

// dataSchemas maps handled event types to the schema of their data object
var dataSchemas = map[string]string{
	EventUserCreated:         schemaUser,
	EventUserUpdated:         schemaUser,
	EventUserDeleted:         schemaDeleted,
	EventOrganizationCreated: schemaOrganization,
	EventOrganizationUpdated: schemaOrganization,
	EventOrganizationDeleted: schemaDeleted,
	EventMembershipCreated:   schemaMembership,
	EventMembershipUpdated:   schemaMembership,
	EventMembershipDeleted:   schemaMembership,
	EventInvitationAccepted:  schemaInvitation,
}

// IsHandled reports whether eventType has a reconciler action
func IsHandled(eventType string) bool {
	_, ok := dataSchemas[eventType]
	return ok
}

// SchemaValidator validates deliveries against the embedded JSON Schemas
type SchemaValidator struct {
	envelope *jsonschema.Schema
	data     map[string]*jsonschema.Schema
}

// NewSchemaValidator compiles the embedded schemas
func NewSchemaValidator() (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()

	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("reading schemas: %w", err)
	}
	for _, entry := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", entry.Name(), err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parsing schema %s: %w", entry.Name(), err)
		}
		if err := compiler.AddResource(schemaBaseURL+entry.Name(), doc); err != nil {
			return nil, fmt.Errorf("adding schema %s: %w", entry.Name(), err)
		}
	}

	envelope, err := compiler.Compile(schemaBaseURL + schemaEnvelope)
	if err != nil {
		return nil, fmt.Errorf("compiling envelope schema: %w", err)
	}

	v := &SchemaValidator{envelope: envelope, data: make(map[string]*jsonschema.Schema)}
	for eventType, name := range dataSchemas {
		schema, err := compiler.Compile(schemaBaseURL + name)
		if err != nil {
			return nil, fmt.Errorf("compiling %s schema: %w", name, err)
		}
		v.data[eventType] = schema
	}
	return v, nil
}

// Validate checks the envelope and, for handled event types, the data object.
// Unhandled event types only need a valid envelope.
func (v *SchemaValidator) Validate(body []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := v.envelope.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	obj, _ := inst.(map[string]any)
	eventType, _ := obj["type"].(string)
	schema, ok := v.data[eventType]
	if !ok {
		return nil
	}
	if err := schema.Validate(obj["data"]); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, eventType, err)
	}
	return nil
}
