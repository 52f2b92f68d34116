package reference

// RecordsPerBucket is the number of 8-byte records in a hashtable bucket.
const RecordsPerBucket = 8

// BucketBytes is the on-disk size of one bucket.
const BucketBytes = RecordsPerBucket * 8

// Bucket is one row of the hashtable: eight HashRecord slots.
type Bucket [RecordsPerBucket]HashRecord
