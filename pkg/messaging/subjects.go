package messaging

const (
	// ProductsStream is the JetStream stream that captures every product subject.
	ProductsStream = "PRODUCTS"

	ProductsCreatedSubject = "products.created"
	ProductsUpdatedSubject = "products.updated"
	ProductsDeletedSubject = "products.deleted"
)

// ProductsSubjects lists the subjects bound to ProductsStream.
var ProductsSubjects = []string{"products.>"}
