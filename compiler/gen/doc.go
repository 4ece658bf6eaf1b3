// Package gen generates typed constants from entity descriptors.
//
// For every descriptor of a registry, one file is written holding the table
// name, the property paths and the column names of the entity:
//
//	// Property paths of User.
//	const (
//	    UserID          = "ID"
//	    UserAddressCity = "Address.City"
//	)
//
// Statements built with these constants fail to compile when a property is
// renamed, instead of failing at run time with an unknown property:
//
//	u.Field(model.UserAddressCity)
//
// Files are rendered with jennifer and written in parallel.
package gen
