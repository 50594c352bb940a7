package graph

import (
	graphql "github.com/graph-gophers/graphql-go"

	"github.com/yungbote/worklet-invoker/internal/platform/logger"
	"github.com/yungbote/worklet-invoker/internal/repos"
)

const schemaSDL = `
schema {
	query: Query
	mutation: Mutation
}

type Model {
	id: Int!
	name: String!
}

type Organization {
	id: String!
	name: String!
	models: [Model!]!
}

type Query {
	organizations: [Organization!]!
	organization(id: String!): Organization
	models: [Model!]!
	model(id: Int!): Model
}

type Mutation {
	createOrganization(name: String!): Organization!
	createModel(name: String!): Model!
	addModelToOrganization(organizationId: String!, modelId: Int!): Boolean!
	removeModelFromOrganization(organizationId: String!, modelId: Int!): Boolean!
}
`

// NewSchema parses the entity schema and binds it to the repos.
func NewSchema(log *logger.Logger, orgs repos.OrganizationRepo, models repos.ModelRepo) (*graphql.Schema, error) {
	root := &Resolver{
		log:    log.With("component", "GraphQL"),
		orgs:   orgs,
		models: models,
	}
	return graphql.ParseSchema(schemaSDL, root, graphql.UseStringDescriptions())
}
