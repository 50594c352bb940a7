package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

type GraphQLHandler struct {
	query http.Handler
}

func NewGraphQLHandler(schema *graphql.Schema) *GraphQLHandler {
	return &GraphQLHandler{query: &relay.Handler{Schema: schema}}
}

// POST /graphql
func (h *GraphQLHandler) Query(c *gin.Context) {
	h.query.ServeHTTP(c.Writer, c.Request)
}

// GET /graphql
func (h *GraphQLHandler) Playground(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", graphiQLPage)
}

var graphiQLPage = []byte(`<!doctype html>
<html>
<head>
  <title>GraphiQL</title>
  <link rel="stylesheet" href="https://unpkg.com/graphiql@3/graphiql.min.css" />
</head>
<body style="margin: 0;">
  <div id="graphiql" style="height: 100vh;"></div>
  <script crossorigin src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/graphiql@3/graphiql.min.js"></script>
  <script>
    const fetcher = GraphiQL.createFetcher({ url: window.location.pathname });
    ReactDOM.createRoot(document.getElementById('graphiql')).render(
      React.createElement(GraphiQL, { fetcher: fetcher }),
    );
  </script>
</body>
</html>
`)
