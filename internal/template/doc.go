// Package template loads storefront theme files from object storage.
//
// A store's theme lives under the "templates/{storeID}/" prefix:
// layout/theme.liquid is the mandatory entry point, templates/ holds
// per-page-type templates (liquid or JSON section configs), and
// sections/ holds reusable section files. Loaded content is cached per
// store and path with the template TTL class.
package template
