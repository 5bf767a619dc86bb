package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// sourceMap unwraps a resolver source that may be a Map or a *Map.
func sourceMap(src interface{}) (*domain.Map, error) {
	switch m := src.(type) {
	case *domain.Map:
		return m, nil
	case domain.Map:
		return &m, nil
	}
	return nil, fmt.Errorf("unexpected source %T", src)
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	pixelPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PixelPoint",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapBounds",
		Fields: graphql.Fields{
			"x0": &graphql.Field{Type: graphql.Float},
			"y0": &graphql.Field{Type: graphql.Float},
			"x1": &graphql.Field{Type: graphql.Float},
			"y1": &graphql.Field{Type: graphql.Float},
		},
	})

	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CalibrationPoint",
		Fields: graphql.Fields{
			"pixel_x": &graphql.Field{Type: graphql.Float},
			"pixel_y": &graphql.Field{Type: graphql.Float},
			"lat":     &graphql.Field{Type: graphql.Float},
			"lon":     &graphql.Field{Type: graphql.Float},
			"proj_x":  &graphql.Field{Type: graphql.Float},
			"proj_y":  &graphql.Field{Type: graphql.Float},
		},
	})

	projectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Projection",
		Fields: graphql.Fields{
			"name":       &graphql.Field{Type: graphql.String},
			"zone":       &graphql.Field{Type: graphql.Int},
			"hemisphere": &graphql.Field{Type: graphql.String},
		},
	})

	methodType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CalibrationMethod",
		Fields: graphql.Fields{
			"name":            &graphql.Field{Type: graphql.String},
			"required_points": &graphql.Field{Type: graphql.Int},
		},
	})

	mapType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Map",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.String},
			"name":               &graphql.Field{Type: graphql.String},
			"width_px":           &graphql.Field{Type: graphql.Int},
			"height_px":          &graphql.Field{Type: graphql.Int},
			"calibration_method": &graphql.Field{Type: graphql.String},
			"projection":         &graphql.Field{Type: projectionType},
			"calibration_points": &graphql.Field{Type: graphql.NewList(pointType)},
			"calibration_status": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					m, err := sourceMap(p.Source)
					if err != nil {
						return nil, err
					}
					return m.Status.String(), nil
				},
			},
			"status_reason": &graphql.Field{Type: graphql.String},
			"bounds":        &graphql.Field{Type: boundsType},
			"origin":        &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"maps": &graphql.Field{
				Type:        graphql.NewList(mapType),
				Description: "List maps",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, ok := p.Args["limit"].(int)
					if !ok {
						limit = 20
					}
					offset, _ := p.Args["offset"].(int)
					maps, _, err := deps.Maps.List(p.Context, limit, offset)
					return maps, err
				},
			},
			"map": &graphql.Field{
				Type:        mapType,
				Description: "Get a map by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Maps.Get(p.Context, p.Args["id"].(string))
				},
			},
			"methods": &graphql.Field{
				Type:        graphql.NewList(methodType),
				Description: "Registered calibration methods",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Maps.Methods(), nil
				},
			},
			"pixelToGeo": &graphql.Field{
				Type:        geoPointType,
				Description: "Convert a pixel position on a calibrated map into lat/lon",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"x":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"y":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Maps.PixelToGeo(p.Context, p.Args["id"].(string),
						p.Args["x"].(float64), p.Args["y"].(float64))
				},
			},
			"geoToPixel": &graphql.Field{
				Type:        pixelPointType,
				Description: "Convert lat/lon into a pixel position on a calibrated map",
				Args: graphql.FieldConfigArgument{
					"id":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Maps.GeoToPixel(p.Context, p.Args["id"].(string),
						p.Args["lat"].(float64), p.Args["lon"].(float64))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"calibrate": &graphql.Field{
				Type:        mapType,
				Description: "Recompute the calibration of a map",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Maps.Calibrate(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
