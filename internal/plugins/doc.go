// Package plugins hosts optional extensions. A Plugin registers services in a
// Container and declares preview providers on the Host while booting; the
// preview package picks the declarations up once Boot has finished.
package plugins
